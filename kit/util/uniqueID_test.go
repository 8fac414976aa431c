package util

import (
	"testing"

	"github.com/jxskiss/base62"
	"github.com/stretchr/testify/assert"
)

func TestUniqueID(t *testing.T) {
	uniqueIDGenerate, err := GetUniqueIDGenerate()
	assert.Nil(t, err)

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		uniqueID := uniqueIDGenerate.Generate()
		assert.False(t, seen[uniqueID.GetInt64()])
		seen[uniqueID.GetInt64()] = true

		parsed, err := base62.ParseInt([]byte(uniqueID.GetBase62()))
		assert.Nil(t, err)
		assert.Equal(t, uniqueID.GetInt64(), parsed)
	}
}
