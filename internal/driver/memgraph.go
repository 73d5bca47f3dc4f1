package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/agenthands/graphweave/internal/logging"
)

// MemgraphDriver talks Bolt to Memgraph or Neo4j.
type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	Logger zerolog.Logger
}

// NewMemgraphDriver connects and verifies connectivity.
func NewMemgraphDriver(ctx context.Context, uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", uri, err)
	}

	logger := logging.FromContext(ctx)
	logger.Info().Str("uri", uri).Msg("connected to graph database")
	return &MemgraphDriver{Driver: driver, Logger: logger}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the indices of the type hierarchy. Failures are logged
// and skipped since the index may already exist.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range Indices {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.Logger.Warn().Err(err).Str("query", q).Msg("failed to create index")
		}
	}
	return nil
}
