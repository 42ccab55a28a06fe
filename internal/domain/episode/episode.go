// Package episode provides the Episode domain entity.
package episode

import "time"

// Episode represents a single playable podcast episode.
// Values are treated as immutable once received from a source.
type Episode struct {
	ID          string    `json:"id,omitempty"`                // Source-specific identifier (optional)
	Title       string    `json:"title"`                       // Episode title
	Members     string    `json:"members"`                     // Hosts / participants
	Thumbnail   string    `json:"thumbnail"`                   // Cover image URL
	Duration    int       `json:"duration" validate:"gte=0"`   // Length in seconds
	URL         string    `json:"url" validate:"required,url"` // Playable media URL
	PublishedAt time.Time `json:"published_at,omitempty"`      // Publication time (zero if unknown)
	Description string    `json:"description,omitempty"`       // HTML or plain text summary
}

// DurationTime returns the episode length as a time.Duration.
func (e *Episode) DurationTime() time.Duration {
	return time.Duration(e.Duration) * time.Second
}

// List is an ordered sequence of episodes.
type List []Episode

// IDs returns all episode IDs in order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, e := range l {
		ids[i] = e.ID
	}
	return ids
}

// TotalDuration returns the total length of all episodes in seconds.
func (l List) TotalDuration() int64 {
	var total int64
	for _, e := range l {
		total += int64(e.Duration)
	}
	return total
}

// FindByID returns the index of the episode with the given ID, or -1.
func (l List) FindByID(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range l {
		if e.ID == id {
			return i
		}
	}
	return -1
}
