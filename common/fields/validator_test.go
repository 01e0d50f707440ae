package fields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReferences(t *testing.T) {
	tests := []struct {
		name    string
		refs    []Reference
		unknown []Reference
	}{
		{
			name: "all known",
			refs: []Reference{
				{Path: "activity_name", Location: "templates[failed-logins]"},
				{Path: ".src_endpoint.ip", Location: "templates[failed-logins]"},
			},
		},
		{name: "empty", refs: nil},
		{
			name: "unknown in input order",
			refs: []Reference{
				{Path: "severity", Location: "templates[a]"},
				{Path: "actor.user.nam", Location: "templates[a]"},
				{Path: "bogus", Location: "templates[b]"},
			},
			unknown: []Reference{
				{Path: "actor.user.nam", Location: "templates[a]"},
				{Path: "bogus", Location: "templates[b]"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ValidateReferences(tt.refs)
			if tt.unknown == nil {
				assert.NoError(t, err)
				return
			}
			var ufe *UnknownFieldsError
			require.True(t, errors.As(err, &ufe))
			assert.Equal(t, tt.unknown, ufe.Refs)
		})
	}
}

func TestUnknownFieldsErrorMessage(t *testing.T) {
	err := &UnknownFieldsError{Refs: []Reference{
		{Path: "made.up", Location: "templates[x].fields"},
		{Path: "other", Location: "templates[y].values"},
	}}
	assert.Equal(t,
		`unknown field references: "made.up" (in templates[x].fields), "other" (in templates[y].values)`,
		err.Error())
}
