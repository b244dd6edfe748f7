package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clv-tracking-service/internal/apiclient"
	"clv-tracking-service/internal/model"
)

// DocumentSink is the document-store write surface (Sink A).
type DocumentSink interface {
	Upsert(collection, key string, fields map[string]any) error
}

// CustomerAPI is the HTTP API surface (Sink B). GetCustomer reports a
// missing record with apiclient.ErrCustomerNotFound.
type CustomerAPI interface {
	GetCustomer(ctx context.Context, id string) (model.CustomerValueRecord, error)
	AddCustomer(ctx context.Context, record model.CustomerValueRecord) error
	UpdateCustomer(ctx context.Context, record model.CustomerValueRecord) error
	SendActivities(ctx context.Context, req model.ActivityBatchRequest) error
}

// Outcome classifies one sink's result within a publish attempt.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// SinkResult is one sink's outcome. Err is set only for OutcomeFailed.
type SinkResult struct {
	Outcome Outcome
	Err     error
}

// PublishResult reports both sinks of one attempt. Sink failures are
// independent: one sink failing never rolls back the other.
type PublishResult struct {
	DocStore SinkResult
	API      SinkResult
}

// Failed reports whether any attempted sink failed.
func (r PublishResult) Failed() bool {
	return r.DocStore.Outcome == OutcomeFailed || r.API.Outcome == OutcomeFailed
}

const customerCollection = "customers"

// Publisher writes a synthesized record to both sinks. The API sink is
// optional; a nil reference skips it rather than failing.
type Publisher struct {
	docs   DocumentSink
	api    CustomerAPI
	logger *zap.Logger
}

// NewPublisher creates a Publisher. api may be nil when no backend API
// is configured.
func NewPublisher(docs DocumentSink, api CustomerAPI, logger *zap.Logger) *Publisher {
	return &Publisher{docs: docs, api: api, logger: logger}
}

// Publish attempts both sinks. skipDoc/skipAPI suppress a sink that
// already holds this record, so a retry re-attempts only what failed.
func (p *Publisher) Publish(ctx context.Context, record model.CustomerValueRecord, skipDoc, skipAPI bool) PublishResult {
	result := PublishResult{
		DocStore: SinkResult{Outcome: OutcomeSkipped},
		API:      SinkResult{Outcome: OutcomeSkipped},
	}

	if !skipDoc {
		result.DocStore = p.publishDocument(record)
	}
	if !skipAPI {
		result.API = p.publishAPI(ctx, record)
	}

	return result
}

// publishDocument upserts unconditionally, merging fields into any
// existing document for the id.
func (p *Publisher) publishDocument(record model.CustomerValueRecord) SinkResult {
	fields, err := recordFields(record)
	if err != nil {
		return SinkResult{Outcome: OutcomeFailed, Err: err}
	}

	if err := p.docs.Upsert(customerCollection, record.ID, fields); err != nil {
		p.logger.Warn("document sink write failed",
			zap.String("customer_id", record.ID),
			zap.Error(err),
		)
		return SinkResult{Outcome: OutcomeFailed, Err: err}
	}
	return SinkResult{Outcome: OutcomeWritten}
}

// publishAPI reads the remote record first and writes only when absent
// or strictly older by lastUpdated. The read and write are not atomic;
// a concurrent writer can win the race, which last-write-wins accepts.
func (p *Publisher) publishAPI(ctx context.Context, record model.CustomerValueRecord) SinkResult {
	if p.api == nil {
		return SinkResult{Outcome: OutcomeSkipped}
	}

	existing, err := p.api.GetCustomer(ctx, record.ID)
	switch {
	case errors.Is(err, apiclient.ErrCustomerNotFound):
		if addErr := p.api.AddCustomer(ctx, record); addErr != nil {
			return p.apiFailure(record.ID, addErr)
		}
		return SinkResult{Outcome: OutcomeWritten}

	case err != nil:
		return p.apiFailure(record.ID, err)
	}

	if !record.LastUpdated.After(existing.LastUpdated) {
		return SinkResult{Outcome: OutcomeSkipped}
	}

	if err := p.api.UpdateCustomer(ctx, record); err != nil {
		return p.apiFailure(record.ID, err)
	}
	return SinkResult{Outcome: OutcomeWritten}
}

func (p *Publisher) apiFailure(id string, err error) SinkResult {
	p.logger.Warn("api sink write failed",
		zap.String("customer_id", id),
		zap.Error(err),
	)
	return SinkResult{Outcome: OutcomeFailed, Err: err}
}

// recordFields flattens the record into the wire field set through its
// json tags.
func recordFields(record model.CustomerValueRecord) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten record: %w", err)
	}
	return fields, nil
}
