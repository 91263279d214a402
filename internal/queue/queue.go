// Package queue defines the resolution request queue consumed by the
// worker.
package queue

import (
	"context"
	"time"
)

// Request is one queued origin URL awaiting resolution.
type Request struct {
	ID        string    `json:"id"`
	OriginURL string    `json:"origin_url"`
	Origin    string    `json:"origin"`
	Label     string    `json:"label,omitempty"`
	Submitted time.Time `json:"submitted_at"`
}

// Queue provides enqueue/dequeue semantics for resolution requests.
type Queue interface {
	Enqueue(ctx context.Context, request Request) error
	Dequeue(ctx context.Context) (Request, error)
}
