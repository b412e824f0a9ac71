package gen

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("gen", fx.Provide(NewSnowflakeNode))

// NewSnowflakeNode builds the process-wide ID node. The node number comes
// from SNOWFLAKE_NODE so replicas never collide; a single instance runs fine
// on the default.
func NewSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if v, ok := os.LookupEnv("SNOWFLAKE_NODE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = n
		}
	}

	return snowflake.NewNode(nodeID)
}
