package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

func TestBuilderEditCycle(t *testing.T) {
	b := NewBuilder(WithIDFunc(sequentialIDs()))

	first := b.Add()
	second := b.Add()
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, "c2", second.ID)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "", b.Compile(nil))

	require.True(t, b.SetField(first.ID, "activity_name", "activity"))
	require.True(t, b.SetOperator(first.ID, fields.OpEquals))
	require.True(t, b.SetValue(first.ID, "failed_login"))
	assert.Equal(t, `activity_name = "failed_login"`, b.Compile(nil))

	require.True(t, b.SetField(second.ID, "severity", "activity"))
	require.True(t, b.SetOperator(second.ID, fields.OpIn))
	require.True(t, b.SetValue(second.ID, "high, critical"))
	assert.Equal(t, `activity_name = "failed_login" AND severity IN ("high", "critical")`, b.Compile(nil))

	require.True(t, b.Remove(first.ID))
	assert.Equal(t, `severity IN ("high", "critical")`, b.Compile(nil))

	assert.False(t, b.Remove("missing"))
	assert.False(t, b.SetValue("missing", "x"))

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.Compile(nil))
}

func TestBuilderLoadAssignsFreshIDs(t *testing.T) {
	b := NewBuilder(WithIDFunc(sequentialIDs()))
	src := []Condition{
		{ID: "tpl-1", Field: "severity", Operator: fields.OpEquals, Value: "high"},
		{ID: "tpl-2", Field: "user.name", Operator: fields.OpEquals, Value: "root"},
	}
	b.Load(src)

	got := b.Conditions()
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, "tpl-1", src[0].ID, "source must not be modified")

	b.SetValue("c1", "low")
	assert.Equal(t, "high", src[0].Value)
}

func TestBuilderConditionsReturnsCopy(t *testing.T) {
	b := NewBuilder()
	c := b.Add()
	got := b.Conditions()
	got[0].Field = "mutated"

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "", b.Conditions()[0].Field)
}

func TestBuilderCompileWithChecker(t *testing.T) {
	b := NewBuilder(WithIDFunc(sequentialIDs()))
	b.Load([]Condition{
		{Field: "severity", Operator: fields.OpEquals, Value: "bad"},
		{Field: "severity", Operator: fields.OpEquals, Value: "ok"},
	})
	assert.Equal(t, `severity = "ok"`, b.Compile(NewCompiler(rejectValue("bad"))))
}
