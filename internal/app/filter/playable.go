package filter

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// PlayableFilter rejects episodes the media element could not load:
// missing or malformed media URL, non-http(s) scheme, negative duration.
type PlayableFilter struct {
	validate *validator.Validate
}

// NewPlayableFilter creates a new PlayableFilter.
func NewPlayableFilter() *PlayableFilter {
	return &PlayableFilter{validate: validator.New()}
}

func (f *PlayableFilter) Name() string {
	return "playable_filter"
}

func (f *PlayableFilter) Description() string {
	return "Rejects episodes without a valid http(s) media URL"
}

func (f *PlayableFilter) ReturnCodes() []string {
	return []string{"not_playable"}
}

func (f *PlayableFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *PlayableFilter) Check(ctx context.Context, ep episode.Episode, accepted []episode.Episode) Result {
	if f.validate == nil {
		f.validate = validator.New()
	}
	if err := f.validate.Struct(ep); err != nil {
		return Reject("not_playable")
	}

	u, err := url.Parse(ep.URL)
	if err != nil {
		return Reject("not_playable")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return Accept()
	default:
		return Reject("not_playable")
	}
}

func init() {
	Register("playable_filter", func() Filter {
		return NewPlayableFilter()
	})
}
