package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kelsos/atom-tasks/internal/models"
)

func TestFormatDate(t *testing.T) {
	var missing, invalid models.Timestamp
	_ = json.Unmarshal([]byte(`"garbage"`), &invalid)

	if got := FormatDate(missing); got != DateUnavailable {
		t.Errorf("missing: %q", got)
	}
	if got := FormatDate(invalid); got != DateUnavailable {
		t.Errorf("invalid: %q", got)
	}

	noon := time.Date(2025, time.April, 12, 12, 0, 0, 0, time.Local)
	if got := FormatDate(models.NewTimestamp(noon)); got != "12 Apr 2025" {
		t.Errorf("valid: %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{50 * time.Hour, "2 days ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
