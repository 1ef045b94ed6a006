package usecase

import (
	"testing"
	"time"
)

func TestIsRecent(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	report := time.Date(2026, 2, 23, 0, 0, 0, 0, loc)
	at := func(y int, m time.Month, d, h int, l *time.Location) *time.Time {
		v := time.Date(y, m, d, h, 0, 0, 0, l)
		return &v
	}

	tests := []struct {
		name      string
		ts        *time.Time
		onlyToday bool
		fallback  int
		want      bool
	}{
		{name: "nil passes without only_today", ts: nil, want: true},
		{name: "nil fails with only_today", ts: nil, onlyToday: true, want: false},
		{name: "same local day", ts: at(2026, 2, 23, 10, loc), onlyToday: true, want: true},
		{name: "utc evening is next local day", ts: at(2026, 2, 22, 23, time.UTC), onlyToday: true, want: true},
		{name: "previous day with only_today", ts: at(2026, 2, 22, 10, loc), onlyToday: true, want: false},
		{name: "two days back within fallback", ts: at(2026, 2, 21, 10, loc), fallback: 2, want: true},
		{name: "three days back outside fallback", ts: at(2026, 2, 20, 10, loc), fallback: 2, want: false},
		{name: "negative fallback means today only", ts: at(2026, 2, 22, 10, loc), fallback: -3, want: false},
		{name: "future accepted", ts: at(2026, 3, 1, 10, loc), fallback: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRecent(tt.ts, report, loc, tt.onlyToday, tt.fallback)
			if got != tt.want {
				t.Fatalf("IsRecent() = %v, want %v", got, tt.want)
			}
		})
	}
}
