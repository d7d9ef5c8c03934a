package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Generator issues time ordered int64 ids.
type Generator interface {
	Generate() snowflake.ID
}

func NewGenerator(node int64) (*snowflake.Node, error) {
	return snowflake.NewNode(node)
}

// TimeOf returns the time embedded into a snowflake id.
func TimeOf(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}
