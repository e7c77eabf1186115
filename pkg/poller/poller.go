// Package poller drives the catalog: it picks the sponsored sort, polls its
// first page over and over and forwards every place it has not seen before
// to a sink.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
)

// DefaultSortName is the sort polled unless configured otherwise.
const DefaultSortName = "Sponsored"

// Catalog is the subset of the catalog client the poll loop needs.
type Catalog interface {
	FetchSorts(ctx context.Context) (*catalog.SortsResponse, error)
	FetchPage(ctx context.Context, page catalog.PageRequest) ([]catalog.Place, error)
}

// Sink receives every newly seen place exactly once.
type Sink interface {
	Emit(ctx context.Context, place catalog.Place) error
}

// Config holds the poll loop configuration.
type Config struct {
	// Limit stops the loop once this many distinct places were seen.
	// Nil polls until the context is cancelled.
	Limit *int

	// RegionID overrides the sort's default region context when set.
	RegionID *int

	// SortName selects the sort by exact name (default: DefaultSortName).
	SortName string
}

// Stats summarises a run.
type Stats struct {
	Pages      int
	Emitted    int
	Duplicates int
	Duration   time.Duration
}

// Poller is the dedup poll loop. It is not safe for concurrent use; requests
// are issued strictly one after another.
type Poller struct {
	catalog Catalog
	sink    Sink
	config  Config
	seen    *SeenSet
	logger  zerolog.Logger
}

// New creates a poll loop over the given catalog and sink.
func New(c Catalog, sink Sink, cfg Config) (*Poller, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.Limit != nil && *cfg.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0 (got %d)", *cfg.Limit)
	}
	if cfg.SortName == "" {
		cfg.SortName = DefaultSortName
	}

	return &Poller{
		catalog: c,
		sink:    sink,
		config:  cfg,
		seen:    NewSeenSet(),
		logger:  log.With().Str("component", "poller").Logger(),
	}, nil
}

// SelectSort returns the first sort whose name equals name exactly.
func SelectSort(sorts []catalog.Sort, name string) (catalog.Sort, error) {
	for _, s := range sorts {
		if s.Name == name {
			return s, nil
		}
	}
	return catalog.Sort{}, &NotFoundError{Name: name}
}

// Seen returns the number of distinct places seen so far.
func (p *Poller) Seen() int {
	return p.seen.Len()
}

// Run fetches the sorts once and then polls pages until the limit is reached
// or ctx is cancelled. Any fetch, decode or sink error ends the run.
//
// The page id from the sorts response is reused for every request; the list
// response carries no cursor to advance to.
func (p *Poller) Run(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	sorts, err := p.catalog.FetchSorts(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch sorts: %w", err)
	}

	sort, err := SelectSort(sorts.Sorts, p.config.SortName)
	if err != nil {
		return stats, err
	}

	regionID := sort.ContextCountryRegionID
	if p.config.RegionID != nil {
		regionID = *p.config.RegionID
	}

	page := catalog.PageRequest{
		SortToken: sort.Token,
		PageID:    sorts.PageContext.PageID,
		RegionID:  regionID,
	}

	logEvent := p.logger.Info().
		Str("sort", sort.Name).
		Int("region_id", regionID).
		Str("page_id", page.PageID)
	if p.config.Limit != nil {
		logEvent = logEvent.Int("limit", *p.config.Limit)
	}
	logEvent.Msg("Polling started")

	for !p.limitReached() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		places, err := p.catalog.FetchPage(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("fetch page %d: %w", stats.Pages+1, err)
		}
		stats.Pages++
		PagesFetched.Inc()

		for _, place := range places {
			if !p.seen.Contains(place) {
				if err := p.sink.Emit(ctx, place); err != nil {
					return stats, fmt.Errorf("emit place %d: %w", place.PlaceID, err)
				}
				stats.Emitted++
				PlacesEmitted.Inc()
			} else {
				stats.Duplicates++
				Duplicates.Inc()
			}
			p.seen.Add(place)
		}
		SeenPlaces.Set(float64(p.seen.Len()))

		p.logger.Debug().
			Int("page", stats.Pages).
			Int("games", len(places)).
			Int("seen", p.seen.Len()).
			Msg("Page processed")
	}

	p.logger.Info().
		Int("pages", stats.Pages).
		Int("emitted", stats.Emitted).
		Int("duplicates", stats.Duplicates).
		Msg("Limit reached")

	return stats, nil
}

func (p *Poller) limitReached() bool {
	return p.config.Limit != nil && p.seen.Len() >= *p.config.Limit
}
