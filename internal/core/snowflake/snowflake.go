package snowflake

import (
	"sync"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init Initialize snowflake generator
func Init(cfg *config.SnowflakeConfig) error {
	var initErr error
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(cfg.WorkerID)
		if err != nil {
			logger.Error("failed to initialize snowflake",
				logger.String("error", err.Error()),
				logger.Int64("worker_id", cfg.WorkerID))
			initErr = err
			return
		}
		logger.Info("snowflake initialized",
			logger.Int64("worker_id", cfg.WorkerID))
	})
	return initErr
}

// Generate Generate new snowflake ID
//
// Snowflake ids are monotonically increasing 19-digit integers, so a
// dot-joined id chain sorts lexicographically in insertion order. The
// reply tree's materialized path relies on this.
func Generate() int64 {
	return node.Generate().Int64()
}

// GetNode Get snowflake node
func GetNode() *snowflake.Node {
	return node
}
