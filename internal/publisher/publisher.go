// Package publisher defines the event publishing interface for finished
// resolutions.
package publisher

import "context"

// Publisher pushes resolution events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
