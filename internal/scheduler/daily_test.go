package scheduler

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	m := &DailyMaintenance{runHour: 3}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before run hour stays same day",
			now:  time.Date(2024, 5, 20, 1, 30, 0, 0, time.Local),
			want: time.Date(2024, 5, 20, 3, 0, 0, 0, time.Local),
		},
		{
			name: "after run hour rolls to next day",
			now:  time.Date(2024, 5, 20, 9, 0, 0, 0, time.Local),
			want: time.Date(2024, 5, 21, 3, 0, 0, 0, time.Local),
		},
		{
			name: "exactly at run hour rolls forward",
			now:  time.Date(2024, 5, 20, 3, 0, 0, 0, time.Local),
			want: time.Date(2024, 5, 21, 3, 0, 0, 0, time.Local),
		},
		{
			name: "month boundary",
			now:  time.Date(2024, 5, 31, 23, 59, 0, 0, time.Local),
			want: time.Date(2024, 6, 1, 3, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.nextRun(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("nextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("nextRun must be strictly in the future, got %v for now %v", got, tt.now)
			}
		})
	}
}

func TestNextRunMidnightHour(t *testing.T) {
	m := &DailyMaintenance{runHour: 0}

	now := time.Date(2024, 5, 20, 0, 0, 1, 0, time.Local)
	got := m.nextRun(now)
	want := time.Date(2024, 5, 21, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("nextRun(%v) = %v, want %v", now, got, want)
	}
}
