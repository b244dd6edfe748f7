package db

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RunMigrations ensures required tables exist. This keeps the service
// self-contained without an external migration step.
func RunMigrations(ctx context.Context, conn clickhouse.Conn) error {
	// ReplacingMergeTree versioned by last_updated gives last-write-wins
	// per customer id at the storage engine. Reads go through FINAL.
	err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS customers
(
	id                      String,
	name                    String,
	email                   String,
	average_purchase_value  Float64,
	purchase_frequency      Float64,
	customer_lifespan       Float64,
	clv                     Float64,
	engagement_score        Int32,
	total_activities        Int32,
	last_updated            DateTime64(3, 'UTC'),
	source                  String,
	user_id                 String,
	created_at              DateTime DEFAULT now()
)
ENGINE = ReplacingMergeTree(last_updated)
ORDER BY id
SETTINGS index_granularity = 8192;
`)
	if err != nil {
		return fmt.Errorf("apply customers migration: %w", err)
	}

	err = conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS activities
(
	user_id         String,
	session_id      String,
	activity_type   String,
	url             String,
	ts              DateTime64(3, 'UTC'),
	payload         String DEFAULT '{}',
	ingested_at     DateTime DEFAULT now()
)
ENGINE = MergeTree
PARTITION BY toYYYYMMDD(ts)
ORDER BY (user_id, ts, session_id)
SETTINGS index_granularity = 8192;
`)
	if err != nil {
		return fmt.Errorf("apply activities migration: %w", err)
	}

	return nil
}
