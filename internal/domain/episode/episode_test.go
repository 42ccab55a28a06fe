package episode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpisode_DurationTime(t *testing.T) {
	e := Episode{Title: "Ep1", Duration: 3981}
	assert.Equal(t, 66*time.Minute+21*time.Second, e.DurationTime())

	zero := Episode{}
	assert.Equal(t, time.Duration(0), zero.DurationTime())
}

func TestList_IDs(t *testing.T) {
	tests := []struct {
		name     string
		list     List
		expected []string
	}{
		{
			name:     "empty list",
			list:     List{},
			expected: []string{},
		},
		{
			name:     "single episode",
			list:     List{{ID: "ep-1"}},
			expected: []string{"ep-1"},
		},
		{
			name:     "multiple episodes keep order",
			list:     List{{ID: "ep-3"}, {ID: "ep-1"}, {ID: "ep-2"}},
			expected: []string{"ep-3", "ep-1", "ep-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.list.IDs())
		})
	}
}

func TestList_TotalDuration(t *testing.T) {
	tests := []struct {
		name     string
		list     List
		expected int64
	}{
		{
			name:     "empty list",
			list:     List{},
			expected: 0,
		},
		{
			name:     "single episode",
			list:     List{{Duration: 180}},
			expected: 180,
		},
		{
			name:     "multiple episodes",
			list:     List{{Duration: 120}, {Duration: 210}, {Duration: 240}},
			expected: 570,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.list.TotalDuration())
		})
	}
}

func TestList_FindByID(t *testing.T) {
	l := List{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, 0, l.FindByID("a"))
	assert.Equal(t, 2, l.FindByID("c"))
	assert.Equal(t, -1, l.FindByID("missing"))
	assert.Equal(t, -1, l.FindByID(""), "empty ID never matches")
}
