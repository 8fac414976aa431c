package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/jxskiss/base62"
	"github.com/pkg/errors"
)

type UniqueIDGenerate struct {
	snowflakeNode *snowflake.Node
}

var (
	singletonUniqueIDGenerate *UniqueIDGenerate
	uniqueIDGenerateOnce      sync.Once
	uniqueIDGenerateErr       error
)

// GetUniqueIDGenerate returns the process wide generator. The node id comes
// from SNOWFLAKE_NODE so replicas never collide.
func GetUniqueIDGenerate() (*UniqueIDGenerate, error) {
	uniqueIDGenerateOnce.Do(func() {
		snowflakeNode, err := snowflake.NewNode(GetEnvInt64("SNOWFLAKE_NODE", 1))
		if err != nil {
			uniqueIDGenerateErr = errors.Wrap(err, "create snowflake failed")
			return
		}
		singletonUniqueIDGenerate = &UniqueIDGenerate{
			snowflakeNode: snowflakeNode,
		}
	})
	return singletonUniqueIDGenerate, uniqueIDGenerateErr
}

func (u UniqueIDGenerate) Generate() *UniqueID {
	return &UniqueID{
		snowflakeID: u.snowflakeNode.Generate(),
	}
}

type UniqueID struct {
	snowflakeID snowflake.ID
}

func (u UniqueID) GetInt64() int64 {
	return u.snowflakeID.Int64()
}

func (u UniqueID) GetBase62() string {
	return string(base62.FormatInt(u.snowflakeID.Int64()))
}
