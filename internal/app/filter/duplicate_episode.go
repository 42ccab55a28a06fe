package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// DuplicateEpisodeFilter drops episodes already admitted in the same pass.
// Detects:
// - Exact ID matches
// - Same media URL
// - Re-uploads (normalized title + same members)
type DuplicateEpisodeFilter struct{}

// NewDuplicateEpisodeFilter creates a new duplicate episode filter.
func NewDuplicateEpisodeFilter() *DuplicateEpisodeFilter {
	return &DuplicateEpisodeFilter{}
}

// Name returns the filter name.
func (f *DuplicateEpisodeFilter) Name() string {
	return "duplicate_episode_filter"
}

// Description returns the filter description.
func (f *DuplicateEpisodeFilter) Description() string {
	return "Rejects episodes whose ID, media URL or normalized title repeats an earlier one"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateEpisodeFilter) ReturnCodes() []string {
	return []string{"duplicate_episode"}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateEpisodeFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the episode duplicates an accepted one.
func (f *DuplicateEpisodeFilter) Check(ctx context.Context, ep episode.Episode, accepted []episode.Episode) Result {
	for _, prev := range accepted {
		if ep.ID != "" && prev.ID == ep.ID {
			return Reject("duplicate_episode")
		}
		if ep.URL != "" && prev.URL == ep.URL {
			return Reject("duplicate_episode")
		}
		if isReupload(prev, ep) {
			return Reject("duplicate_episode")
		}
	}
	return Accept()
}

var (
	reuploadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*[\(\[]\s*re-?upload(ed)?\s*[\)\]]`), // "(Reupload)", "[Re-uploaded]"
		regexp.MustCompile(`\s*[\(\[]\s*(rerun|repost|replay)\s*[\)\]]`),
		regexp.MustCompile(`\s*[\(\[]\s*remaster(ed)?\s*\d{0,4}\s*[\)\]]`),
		regexp.MustCompile(`\s*-\s*(re-?upload(ed)?|rerun|repost)$`),
	}
	whitespace = regexp.MustCompile(`\s+`)
)

// isReupload reports whether two episodes are the same recording published twice.
func isReupload(a, b episode.Episode) bool {
	if a.Members == "" || !strings.EqualFold(strings.TrimSpace(a.Members), strings.TrimSpace(b.Members)) {
		return false
	}
	ta, tb := normalizeTitle(a.Title), normalizeTitle(b.Title)
	return ta != "" && ta == tb
}

// normalizeTitle lowercases and strips re-publication markers.
func normalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	for _, p := range reuploadPatterns {
		normalized = p.ReplaceAllString(normalized, "")
	}
	normalized = whitespace.ReplaceAllString(strings.TrimSpace(normalized), " ")
	return strings.TrimRight(normalized, " -")
}

func init() {
	Register("duplicate_episode_filter", func() Filter {
		return NewDuplicateEpisodeFilter()
	})
}
