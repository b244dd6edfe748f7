package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"clv-tracking-service/internal/model"
)

// ErrCustomerNotFound is returned when no row exists for the given id.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines database operations for customer records.
type CustomerRepository interface {
	// Upsert writes the record; an existing row with the same id is
	// replaced when this record's last_updated is newer.
	Upsert(ctx context.Context, record model.CustomerValueRecord) error

	// GetByID fetches the current version of one customer.
	GetByID(ctx context.Context, id string) (model.CustomerValueRecord, error)

	// List returns a page of customers plus the unpaged total.
	List(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, uint64, error)

	// Delete removes a customer. Missing ids report ErrCustomerNotFound.
	Delete(ctx context.Context, id string) error

	// FetchAnalytics aggregates CLV across all customers.
	FetchAnalytics(ctx context.Context) (model.AnalyticsSummary, error)
}

type customerRepository struct {
	conn clickhouse.Conn
}

// NewCustomerRepository creates a CustomerRepository backed by ClickHouse.
func NewCustomerRepository(conn clickhouse.Conn) CustomerRepository {
	return &customerRepository{conn: conn}
}

const customerColumns = `id, name, email, average_purchase_value, purchase_frequency,
	customer_lifespan, clv, engagement_score, total_activities, last_updated, source, user_id`

const insertCustomerQuery = `
	INSERT INTO customers (` + customerColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (r *customerRepository) Upsert(ctx context.Context, record model.CustomerValueRecord) error {
	err := r.conn.Exec(ctx, insertCustomerQuery,
		record.ID,
		record.Name,
		record.Email,
		record.AveragePurchaseValue,
		record.PurchaseFrequency,
		record.CustomerLifespan,
		record.CLV,
		int32(record.EngagementScore),
		int32(record.TotalActivities),
		record.LastUpdated,
		record.Source,
		record.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (model.CustomerValueRecord, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers FINAL
		WHERE id = ?
	`, id)

	record, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CustomerValueRecord{}, ErrCustomerNotFound
		}
		return model.CustomerValueRecord{}, fmt.Errorf("select customer: %w", err)
	}
	return record, nil
}

func (r *customerRepository) List(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, uint64, error) {
	where := ""
	args := []any{}
	if filter.UserID != "" {
		where = "WHERE user_id = ?"
		args = append(args, filter.UserID)
	}

	var total uint64
	if err := r.conn.QueryRow(ctx, `SELECT count() FROM customers FINAL `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := r.conn.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers FINAL `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []model.CustomerValueRecord{}
	for rows.Next() {
		record, scanErr := scanCustomer(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", scanErr)
		}
		customers = append(customers, record)
	}

	return customers, total, rows.Err()
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.conn.Exec(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *customerRepository) FetchAnalytics(ctx context.Context) (model.AnalyticsSummary, error) {
	var summary model.AnalyticsSummary

	err := r.conn.QueryRow(ctx, `
		SELECT
			count(),
			ifNull(avg(clv), 0),
			ifNull(sum(clv), 0),
			ifNull(max(clv), 0),
			ifNull(min(clv), 0)
		FROM customers FINAL
	`).Scan(&summary.TotalCustomers, &summary.AverageCLV, &summary.TotalCLV, &summary.MaxCLV, &summary.MinCLV)
	if err != nil {
		return model.AnalyticsSummary{}, fmt.Errorf("aggregate clv: %w", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers FINAL
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		return model.AnalyticsSummary{}, fmt.Errorf("recent customers: %w", err)
	}
	defer rows.Close()

	summary.RecentCustomers = []model.CustomerValueRecord{}
	for rows.Next() {
		record, scanErr := scanCustomer(rows)
		if scanErr != nil {
			return model.AnalyticsSummary{}, fmt.Errorf("scan recent customer: %w", scanErr)
		}
		summary.RecentCustomers = append(summary.RecentCustomers, record)
	}

	return summary, rows.Err()
}

// rowScanner covers both driver.Row and driver.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (model.CustomerValueRecord, error) {
	var record model.CustomerValueRecord
	var engagementScore, totalActivities int32

	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Email,
		&record.AveragePurchaseValue,
		&record.PurchaseFrequency,
		&record.CustomerLifespan,
		&record.CLV,
		&engagementScore,
		&totalActivities,
		&record.LastUpdated,
		&record.Source,
		&record.UserID,
	)
	if err != nil {
		return model.CustomerValueRecord{}, err
	}

	record.EngagementScore = int(engagementScore)
	record.TotalActivities = int(totalActivities)
	return record, nil
}
