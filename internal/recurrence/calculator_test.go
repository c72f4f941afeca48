package recurrence

import (
	"testing"
	"time"

	"github.com/taskfleet/eventd/internal/models"
)

var testNow = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

func TestCalculateNextDueDate_Intervals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dueAt    string
		typ      models.RecurrenceType
		interval int
		want     *time.Time
	}{
		{
			name:  "daily adds one day",
			dueAt: "2024-01-01T00:00:00",
			typ:   models.RecurrenceDaily,
			want:  timePtr(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "weekly adds seven days",
			dueAt: "2024-01-01T00:00:00",
			typ:   models.RecurrenceWeekly,
			want:  timePtr(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "custom adds the interval in days",
			dueAt:    "2024-01-01T00:00:00",
			typ:      models.RecurrenceCustom,
			interval: 3,
			want:     timePtr(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "utc suffix is accepted",
			dueAt: "2024-01-01T00:00:00Z",
			typ:   models.RecurrenceDaily,
			want:  timePtr(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "custom with zero interval yields nothing",
			dueAt:    "2024-01-01T00:00:00",
			typ:      models.RecurrenceCustom,
			interval: 0,
			want:     nil,
		},
		{
			name:     "custom with negative interval yields nothing",
			dueAt:    "2024-01-01T00:00:00",
			typ:      models.RecurrenceCustom,
			interval: -2,
			want:     nil,
		},
		{
			name: "none yields nothing",
			typ:  models.RecurrenceNone,
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CalculateNextDueDate(tt.dueAt, tt.typ, tt.interval, testNow)
			if err != nil {
				t.Fatalf("CalculateNextDueDate returned error: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected no next due date, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a next due date, got nil")
			}
			if !got.Equal(*tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCalculateNextDueDate_InvalidDueAtFails(t *testing.T) {
	t.Parallel()

	got, err := CalculateNextDueDate("not-a-date", models.RecurrenceDaily, 0, testNow)
	if err == nil {
		t.Fatal("Expected error for unparseable due date")
	}
	if got != nil {
		t.Errorf("Expected nil result on parse failure, got %v", got)
	}
}

func TestCalculateNextDueDate_AbsentDueAtUsesNow(t *testing.T) {
	t.Parallel()

	got, err := CalculateNextDueDate("", models.RecurrenceWeekly, 0, testNow)
	if err != nil {
		t.Fatalf("CalculateNextDueDate returned error: %v", err)
	}
	want := testNow.AddDate(0, 0, 7)
	if got == nil || !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCalculateNextDueDate_PastBaseClampsToNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		typ      models.RecurrenceType
		interval int
	}{
		{name: "daily", typ: models.RecurrenceDaily},
		{name: "weekly", typ: models.RecurrenceWeekly},
		{name: "custom", typ: models.RecurrenceCustom, interval: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CalculateNextDueDate("2020-01-01T00:00:00Z", tt.typ, tt.interval, now)
			if err != nil {
				t.Fatalf("CalculateNextDueDate returned error: %v", err)
			}
			if got == nil {
				t.Fatal("Expected a next due date")
			}
			if got.Before(now) {
				t.Errorf("Expected next due date >= now, got %v (now %v)", got, now)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
