package kube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrs "github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain word", in: "hello", want: "'hello'"},
		{name: "empty string", in: "", want: "''"},
		{name: "embedded single quote", in: "it's", want: `'it'\''s'`},
		{name: "spaces and metacharacters", in: "a b; rm -rf /", want: "'a b; rm -rf /'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuote(tt.in))
		})
	}
}

func TestSedExpr(t *testing.T) {
	t.Run("builds a valid substitution", func(t *testing.T) {
		got, err := SedExpr("foo", "bar")
		require.NoError(t, err)
		assert.Equal(t, "s/foo/bar/g", got)
	})

	t.Run("rejects slash in pattern", func(t *testing.T) {
		_, err := SedExpr("a/b", "c")
		require.Error(t, err)
		var bad *pferrs.BadStep
		assert.True(t, errors.As(err, &bad))
		assert.Equal(t, "pattern", bad.Field)
	})

	t.Run("rejects slash in replace", func(t *testing.T) {
		_, err := SedExpr("a", "c/d")
		require.Error(t, err)
		var bad *pferrs.BadStep
		assert.True(t, errors.As(err, &bad))
		assert.Equal(t, "replace", bad.Field)
	})
}
