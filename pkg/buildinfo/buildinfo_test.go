package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.NotEmpty(t, info.GoVersion)
}

func TestString(t *testing.T) {
	assert.Contains(t, String(), Version)
	assert.Contains(t, String(), Commit)
}
