package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"clv-tracking-service/internal/model"
)

// ActivityRepository archives raw activity events.
type ActivityRepository interface {
	// CreateBatch inserts a buffered set of archive rows.
	CreateBatch(ctx context.Context, rows []model.ArchiveRow) error
}

type activityRepository struct {
	conn clickhouse.Conn
}

// NewActivityRepository creates an ActivityRepository backed by ClickHouse.
func NewActivityRepository(conn clickhouse.Conn) ActivityRepository {
	return &activityRepository{conn: conn}
}

func (r *activityRepository) CreateBatch(ctx context.Context, rows []model.ArchiveRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO activities (user_id, session_id, activity_type, url, ts, payload)
	`)
	if err != nil {
		return fmt.Errorf("prepare activity batch: %w", err)
	}

	for _, row := range rows {
		payload, marshalErr := marshalPayload(row.Event.Payload)
		if marshalErr != nil {
			return marshalErr
		}

		if err := batch.Append(
			row.UserID,
			row.Event.SessionID,
			string(row.Event.Type),
			row.Event.URL,
			row.Event.Timestamp,
			payload,
		); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send activity batch: %w", err)
	}
	return nil
}

func marshalPayload(payload map[string]any) (string, error) {
	if payload == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(raw), nil
}
