package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRandomString(t *testing.T) {
	const alphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	first := randomString(32)
	second := randomString(32)

	assert.Equal(t, 32, len(first))
	assert.NotEqual(t, first, second)
	for _, c := range first {
		assert.True(t, strings.ContainsRune(alphanum, c))
	}
}

func TestTTLSeconds(t *testing.T) {
	assert.Equal(t, uint(0), ttlSeconds(0))
	assert.Equal(t, uint(0), ttlSeconds(-time.Second))
	assert.Equal(t, uint(1), ttlSeconds(time.Millisecond))
	assert.Equal(t, uint(180), ttlSeconds(3*time.Minute))
	assert.Equal(t, uint(181), ttlSeconds(3*time.Minute+time.Millisecond))
}
