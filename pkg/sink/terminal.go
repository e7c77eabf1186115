package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
)

// CapabilityFunc reports whether the destination renders hyperlinks.
type CapabilityFunc func() bool

// Terminal writes one line per place. The capability is queried on every
// Emit so a destination that changes (e.g. a redirected fd) is honoured.
type Terminal struct {
	mu         sync.Mutex
	out        io.Writer
	hyperlinks CapabilityFunc
}

// NewTerminal creates a terminal sink. A nil capability always renders plain
// text.
func NewTerminal(out io.Writer, hyperlinks CapabilityFunc) *Terminal {
	if hyperlinks == nil {
		hyperlinks = func() bool { return false }
	}
	return &Terminal{out: out, hyperlinks: hyperlinks}
}

// Emit implements Sink.
func (t *Terminal) Emit(_ context.Context, place catalog.Place) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	if t.hyperlinks() {
		_, err = fmt.Fprintln(t.out, Hyperlink(place.Name, place.URL()))
	} else {
		_, err = fmt.Fprintf(t.out, "%s > %d\n", place.Name, place.PlaceID)
	}
	if err != nil {
		return fmt.Errorf("write place %d: %w", place.PlaceID, err)
	}
	return nil
}
