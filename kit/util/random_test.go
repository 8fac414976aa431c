package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomString(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	for i := 0; i < 200; i++ {
		value, err := GetRandomString(alphabet, 7)
		assert.Nil(t, err)
		assert.Len(t, value, 7)
		for _, c := range value {
			assert.True(t, strings.ContainsRune(alphabet, c))
		}
	}

	_, err := GetRandomString("", 7)
	assert.Error(t, err)
}

func TestGetURLSafeToken(t *testing.T) {
	token, err := GetURLSafeToken(32)
	assert.Nil(t, err)
	assert.Len(t, token, 43)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestGetSHA256(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", GetSHA256("hello"))
}
