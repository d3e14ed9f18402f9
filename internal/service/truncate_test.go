package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}

func TestTruncateMultiByteBoundary(t *testing.T) {
	s := strings.Repeat("é", 200)
	out := truncate(s, 150)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "é...", string([]rune(out)[149:]))
	assert.Len(t, []rune(out), 153)
}
