package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(format string) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	return New(&out, &errOut, format), &out, &errOut
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name     string
		print    func(p *Printer)
		toStderr bool
		want     string
	}{
		{"success", func(p *Printer) { p.Success("Saved %s", "q-1") }, false, "✓ Saved q-1\n"},
		{"error", func(p *Printer) { p.Error("failed: %d", 503) }, true, "✗ failed: 503\n"},
		{"info", func(p *Printer) { p.Info("version %s", "1") }, false, "version 1\n"},
		{"warn", func(p *Printer) { p.Warn("%d%% regex", 50) }, false, "⚠ 50% regex\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out, errOut := newTestPrinter("")
			tt.print(p)
			if tt.toStderr {
				assert.Empty(t, out.String())
				assert.Equal(t, tt.want, errOut.String())
			} else {
				assert.Empty(t, errOut.String())
				assert.Equal(t, tt.want, out.String())
			}
		})
	}
}

type sample struct {
	Name    string   `json:"name"`
	Score   int      `json:"complexity_score"`
	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags"`
	Literal string   `json:"literal"`
}

func TestJSON(t *testing.T) {
	p, out, _ := newTestPrinter(FormatJSON)
	require.NoError(t, p.JSON(sample{Name: "x", Score: 3}))

	assert.Contains(t, out.String(), "  \"complexity_score\": 3")
	var parsed sample
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	assert.Equal(t, 3, parsed.Score)
}

func TestYAMLUsesJSONNamesInOrder(t *testing.T) {
	p, out, _ := newTestPrinter(FormatYAML)
	require.NoError(t, p.YAML(sample{Name: "failed logins", Score: 4, Enabled: true, Tags: []string{"auth"}, Literal: "true"}))

	want := `name: failed logins
complexity_score: 4
enabled: true
tags:
  - auth
literal: "true"
`
	assert.Equal(t, want, out.String())
}

func TestRender(t *testing.T) {
	table := func() *Table {
		tbl := NewTable("ID", "NAME")
		tbl.AddRow("1", "failed logins")
		return tbl
	}

	t.Run("table", func(t *testing.T) {
		p, out, _ := newTestPrinter(FormatTable)
		require.NoError(t, p.Render(nil, table))
		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "ID  NAME           ", lines[0])
		assert.Equal(t, "--  -------------  ", lines[1])
		assert.Equal(t, "1   failed logins  ", lines[2])
	})

	t.Run("json", func(t *testing.T) {
		p, out, _ := newTestPrinter(FormatJSON)
		require.NoError(t, p.Render(map[string]int{"n": 1}, table))
		assert.JSONEq(t, `{"n":1}`, out.String())
	})

	t.Run("unknown", func(t *testing.T) {
		p, _, _ := newTestPrinter("xml")
		assert.Error(t, p.Render(nil, table))
	})
}

func TestTableRowShape(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("only")
	tbl.AddRow("1", "2", "dropped")

	var buf bytes.Buffer
	color.NoColor = true
	tbl.Render(&buf)
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "only     ")
}
