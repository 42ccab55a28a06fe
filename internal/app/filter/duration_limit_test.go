package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podcastr/internal/domain/episode"
)

func TestDurationLimitFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		minMinutes   float64
		maxMinutes   float64
		seconds      int
		shouldReject bool
	}{
		{name: "Within limits", minMinutes: 10, maxMinutes: 90, seconds: 45 * 60},
		{name: "Too short", minMinutes: 10, seconds: 5 * 60, shouldReject: true},
		{name: "Too long", minMinutes: 1, maxMinutes: 60, seconds: 61 * 60, shouldReject: true},
		{name: "Exact min", minMinutes: 10, seconds: 10 * 60},
		{name: "Exact max", minMinutes: 1, maxMinutes: 60, seconds: 60 * 60},
		{name: "No upper bound", minMinutes: 0, maxMinutes: 0, seconds: 5 * 60 * 60},
		{name: "Unknown duration rejected by min", minMinutes: 1, seconds: 0, shouldReject: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			f.config = &DurationLimitConfig{
				MinMinutes: tt.minMinutes,
				MaxMinutes: tt.maxMinutes,
			}

			ep := episode.Episode{Title: "ep", URL: "https://cdn.example.com/ep.mp3", Duration: tt.seconds}
			result := f.Check(context.Background(), ep, nil)

			if tt.shouldReject {
				assert.False(t, result.Accepted)
				assert.Equal(t, "duration_limit_exceeded", result.Code)
			} else {
				assert.True(t, result.Accepted)
			}
		})
	}
}

func TestDurationLimitFilter_NoConfigAcceptsAll(t *testing.T) {
	f := NewDurationLimitFilter()

	result := f.Check(context.Background(), episode.Episode{Duration: 1}, nil)

	assert.True(t, result.Accepted)
}

func TestDurationLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
		wantMin  float64
		wantMax  float64
	}{
		{
			name:     "valid range",
			settings: map[string]any{"min_minutes": 5, "max_minutes": 120},
			wantMin:  5,
			wantMax:  120,
		},
		{
			name:     "string values weakly typed",
			settings: map[string]any{"min_minutes": "1.5"},
			wantMin:  1.5,
		},
		{
			name:     "empty settings",
			settings: map[string]any{},
		},
		{
			name:     "negative min",
			settings: map[string]any{"min_minutes": -1},
			wantErr:  true,
		},
		{
			name:     "min greater than max",
			settings: map[string]any{"min_minutes": 30, "max_minutes": 10},
			wantErr:  true,
		},
		{
			name:     "wrong type",
			settings: map[string]any{"max_minutes": map[string]any{"x": 1}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()

			err := f.ValidateConfig(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, f.config)
			assert.Equal(t, tt.wantMin, f.config.MinMinutes)
			assert.Equal(t, tt.wantMax, f.config.MaxMinutes)
		})
	}
}
