// Package sink renders and publishes newly discovered places.
//
// Terminal writes one line per place to a writer, as a clickable hyperlink
// when the destination supports it. RedisStream and Kafka publish the same
// discoveries to external systems, and Multi fans a place out to several
// sinks.
package sink

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
)

// Sink receives newly seen places.
type Sink interface {
	Emit(ctx context.Context, place catalog.Place) error
}

// Discovery is the payload published for a newly seen place.
type Discovery struct {
	PlaceID      uint64    `json:"placeId"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// NewDiscovery builds the payload for place.
func NewDiscovery(place catalog.Place, at time.Time) Discovery {
	return Discovery{
		PlaceID:      place.PlaceID,
		Name:         place.Name,
		URL:          place.URL(),
		DiscoveredAt: at.UTC(),
	}
}

// Multi emits every place to each sink in order. The first error stops the
// fan-out and is returned.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, place catalog.Place) error {
	for _, s := range m {
		if err := s.Emit(ctx, place); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that implements io.Closer.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
