/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/datastore/sqlite"
)

// Open builds the datastore.Client selected by cfg. A nil logger disables logging.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (datastore.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.Backend {
	case BackendDynamoDB:
		api, err := ddb.NewDynamoDBClient(ctx,
			cfg.DynamoDB.AccessKey,
			cfg.DynamoDB.SecretKey,
			cfg.DynamoDB.Region,
			cfg.DynamoDB.Endpoint,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		logger.Info("DynamoDB client initialized",
			zap.String("region", cfg.DynamoDB.Region),
			zap.String("tablePrefix", cfg.DynamoDB.TablePrefix),
			zap.Bool("customEndpoint", cfg.DynamoDB.Endpoint != ""))
		return ddb.New(api,
			ddb.WithTablePrefix(cfg.DynamoDB.TablePrefix),
			ddb.WithBatchRetries(cfg.DynamoDB.BatchRetries, cfg.DynamoDB.BatchBackoff.Duration()),
			ddb.WithLogger(logger.Named("ddb")),
		), nil

	case BackendSQLite:
		client, err := sqlite.New(cfg.SQLite.Path, sqlite.WithLogger(logger.Named("sqlite")))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		logger.Info("SQLite store opened", zap.String("path", cfg.SQLite.Path))
		return client, nil

	default:
		logger.Info("in-memory store created")
		return mock.New(), nil
	}
}
