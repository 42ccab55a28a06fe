package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the episode.
func (c *Chain) Execute(ctx context.Context, ep episode.Episode, accepted []episode.Episode) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, ep, accepted)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply screens every episode in order and returns the accepted ones along
// with a count of rejections per code.
func (c *Chain) Apply(ctx context.Context, episodes []episode.Episode) ([]episode.Episode, map[string]int) {
	accepted := make([]episode.Episode, 0, len(episodes))
	rejected := make(map[string]int)

	for _, ep := range episodes {
		result := c.Execute(ctx, ep, accepted)
		if !result.Accepted {
			rejected[result.Code]++
			zlog.Debug().Msgf("filter: episode rejected: title=%q code=%s", ep.Title, result.Code)
			continue
		}
		accepted = append(accepted, ep)
	}

	return accepted, rejected
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
