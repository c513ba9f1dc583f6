package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("pkg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "pkg-"))
	assert.Len(t, got, len("pkg-")+21)
}

func TestNewTipID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := NewTipID()
		require.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}
