package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://fathom.video/share/abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashURL("https://fathom.video/share/abc"))
	assert.NotEqual(t, a, HashURL("https://fathom.video/share/abd"))
}

func TestHost(t *testing.T) {
	assert.Equal(t, "fathom.video", Host("https://Fathom.video/share/abc"))
	assert.Equal(t, "unknown", Host("not a url"))
	assert.Equal(t, "unknown", Host("://bad"))
}
