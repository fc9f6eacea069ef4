package recurrence

import (
	"errors"
	"testing"
	"time"

	"beproductive/backend/internal/model"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	day, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("parse date %s: %v", raw, err)
	}
	return day
}

func strPtr(s string) *string {
	return &s
}

func TestWeekdaysMatchesWorkingDaysOnly(t *testing.T) {
	rule := model.RecurringTask{RecurrencePattern: model.PatternWeekdays}

	if !ShouldAppear(rule, mustDate(t, "2024-06-05")) {
		t.Fatal("expected WEEKDAYS rule to match a Wednesday")
	}
	if ShouldAppear(rule, mustDate(t, "2024-06-08")) {
		t.Fatal("expected WEEKDAYS rule not to match a Saturday")
	}
	if ShouldAppear(rule, mustDate(t, "2024-06-09")) {
		t.Fatal("expected WEEKDAYS rule not to match a Sunday")
	}
}

func TestCustomMatchesListedDays(t *testing.T) {
	rule := model.RecurringTask{
		RecurrencePattern: model.PatternCustom,
		DaysOfWeek:        strPtr("[1,3,5]"),
	}

	// 2024-06-02 is a Sunday.
	want := map[string]bool{
		"2024-06-02": false,
		"2024-06-03": true,
		"2024-06-04": false,
		"2024-06-05": true,
		"2024-06-06": false,
		"2024-06-07": true,
		"2024-06-08": false,
	}
	for date, expected := range want {
		if got := ShouldAppear(rule, mustDate(t, date)); got != expected {
			t.Fatalf("%s: expected %v, got %v", date, expected, got)
		}
	}
}

func TestMalformedCustomDaysNeverMatch(t *testing.T) {
	cases := []*string{nil, strPtr("not-json"), strPtr(`["1"]`), strPtr("[]"), strPtr("[9]")}
	for _, days := range cases {
		rule := model.RecurringTask{RecurrencePattern: model.PatternCustom, DaysOfWeek: days}
		for offset := 0; offset < 7; offset++ {
			day := mustDate(t, "2024-06-02").AddDate(0, 0, offset)
			if ShouldAppear(rule, day) {
				t.Fatalf("days %v matched %s", days, day.Format(model.DateLayout))
			}
		}
	}
}

func TestDailyWeeklyAndUnknownPatterns(t *testing.T) {
	saturday := mustDate(t, "2024-06-08")
	if !ShouldAppear(model.RecurringTask{RecurrencePattern: model.PatternDaily}, saturday) {
		t.Fatal("expected DAILY to match")
	}
	if !ShouldAppear(model.RecurringTask{RecurrencePattern: model.PatternWeekly}, saturday) {
		t.Fatal("expected WEEKLY to match every day")
	}
	if ShouldAppear(model.RecurringTask{RecurrencePattern: "MONTHLY"}, saturday) {
		t.Fatal("expected unknown pattern not to match")
	}
	if ParseSchedule("MONTHLY", nil) != nil {
		t.Fatal("expected nil schedule for unknown pattern")
	}
}

func TestValidateSchedule(t *testing.T) {
	if _, err := ValidateSchedule("HOURLY", nil); !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
	if _, err := ValidateSchedule(model.PatternCustom, nil); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays for missing days, got %v", err)
	}
	if _, err := ValidateSchedule(model.PatternCustom, strPtr("[0,7]")); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays for out of range day, got %v", err)
	}

	schedule, err := ValidateSchedule(model.PatternCustom, strPtr("[5, 1, 1]"))
	if err != nil {
		t.Fatalf("validate custom: %v", err)
	}
	custom, ok := schedule.(Custom)
	if !ok {
		t.Fatalf("expected Custom, got %T", schedule)
	}
	if got := EncodeDays(custom.Days); got != "[1,5]" {
		t.Fatalf("expected canonical encoding [1,5], got %s", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "2024-13-01", "06/03/2024", "2024-06-03T00:00:00Z"} {
		if _, err := ParseDate(raw); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", raw, err)
		}
	}
}
