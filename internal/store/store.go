// Package store defines persistence for finished resolutions.
package store

import (
	"context"
	"time"
)

// ResolutionRecord is the row persisted for one resolved origin URL.
type ResolutionRecord struct {
	ID          string    `json:"id"`
	OriginURL   string    `json:"origin_url"`
	FinalURL    string    `json:"final_url"`
	Status      string    `json:"status"`
	Hops        int       `json:"hops"`
	ContentType string    `json:"content_type,omitempty"`
	Title       string    `json:"title,omitempty"`
	ErrorText   string    `json:"error_text,omitempty"`
	ResolvedAt  time.Time `json:"resolved_at"`
	// Visits carries the serialized hop audit trail.
	Visits []VisitRow `json:"visits,omitempty"`
}

// VisitRow is the serializable form of one redirect-chain hop.
type VisitRow struct {
	Kind        string `json:"kind"`
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ResolutionStore persists resolution records.
type ResolutionStore interface {
	StoreResolution(ctx context.Context, record ResolutionRecord) error
}

// NoOpStore discards records; useful when no database is configured.
type NoOpStore struct{}

// StoreResolution does nothing and returns nil.
func (NoOpStore) StoreResolution(_ context.Context, _ ResolutionRecord) error { return nil }
