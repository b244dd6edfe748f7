package model

import "time"

// CustomerValueRecord is the denormalized record synced to both sinks.
// CLV is always recomputed as the product of its three factors at write
// time so it can never drift from them. Each sink holds only the latest
// record per id, last-write-wins by LastUpdated.
type CustomerValueRecord struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email,omitempty"`
	AveragePurchaseValue float64   `json:"averagePurchaseValue"`
	PurchaseFrequency    float64   `json:"purchaseFrequency"`
	CustomerLifespan     float64   `json:"customerLifespan"`
	CLV                  float64   `json:"clv"`
	EngagementScore      int       `json:"engagementScore"`
	TotalActivities      int       `json:"totalActivities"`
	LastUpdated          time.Time `json:"lastUpdated"`
	Source               string    `json:"source"`
	UserID               string    `json:"userId,omitempty"`
}

// ComputeCLV returns the three-factor product.
func (r CustomerValueRecord) ComputeCLV() float64 {
	return r.AveragePurchaseValue * r.PurchaseFrequency * r.CustomerLifespan
}

// CustomerFilter narrows customer list queries.
type CustomerFilter struct {
	UserID string
	Limit  int
	Page   int
}

// Pagination describes a page of list results.
type Pagination struct {
	Total uint64 `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Pages int    `json:"pages"`
}

// CustomerListResponse is returned by the customer list endpoint.
type CustomerListResponse struct {
	Status     string                `json:"status"`
	Customers  []CustomerValueRecord `json:"customers"`
	Pagination Pagination            `json:"pagination"`
}

// AnalyticsSummary aggregates CLV across the whole customer set.
type AnalyticsSummary struct {
	TotalCustomers  uint64                `json:"totalCustomers"`
	AverageCLV      float64               `json:"averageCLV"`
	TotalCLV        float64               `json:"totalCLV"`
	MaxCLV          float64               `json:"maxCLV"`
	MinCLV          float64               `json:"minCLV"`
	RecentCustomers []CustomerValueRecord `json:"recentCustomers"`
}

// UserAnalytics aggregates CLV for a single user's customers.
type UserAnalytics struct {
	TotalCustomers int                   `json:"totalCustomers"`
	TotalCLV       float64               `json:"totalCLV"`
	AverageCLV     float64               `json:"averageCLV"`
	Customers      []CustomerValueRecord `json:"customers"`
}

// HealthResponse is the health check wire shape.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
