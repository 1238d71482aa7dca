package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRelativeAt(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{name: "just now", t: now.Add(-time.Second), expected: "1 second ago"},
		{name: "seconds", t: now.Add(-45 * time.Second), expected: "45 seconds ago"},
		{name: "one minute", t: now.Add(-90 * time.Second), expected: "1 minute ago"},
		{name: "minutes", t: now.Add(-10 * time.Minute), expected: "10 minutes ago"},
		{name: "one hour", t: now.Add(-time.Hour), expected: "1 hour ago"},
		{name: "days", t: now.Add(-49 * time.Hour), expected: "2 days ago"},
		{name: "months", t: now.Add(-70 * 24 * time.Hour), expected: "2 months ago"},
		{name: "years", t: now.Add(-800 * 24 * time.Hour), expected: "2 years ago"},
		{name: "future", t: now.Add(2 * time.Hour), expected: "2 hours from now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatRelativeAt(tt.t, now))
		})
	}
}
