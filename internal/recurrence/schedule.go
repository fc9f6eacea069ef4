// Package recurrence decides which recurring task rules materialise on a
// given calendar day and creates the missing task instances.
package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"beproductive/backend/internal/model"
)

var (
	ErrInvalidPattern = errors.New("recurrence pattern must be DAILY, WEEKDAYS, WEEKLY or CUSTOM")
	ErrInvalidDays    = errors.New("daysOfWeek must be a non-empty JSON array of integers 0-6")
	ErrInvalidDate    = errors.New("date must use YYYY-MM-DD")
)

// WeekdaySet is a set of weekdays, bit i standing for time.Weekday(i)
// (Sunday = 0).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		set = set.With(day)
	}
	return set
}

func (s WeekdaySet) With(day time.Weekday) WeekdaySet {
	if day < time.Sunday || day > time.Saturday {
		return s
	}
	return s | 1<<uint(day)
}

func (s WeekdaySet) Has(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Days lists the members in ascending order.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Has(day) {
			days = append(days, day)
		}
	}
	return days
}

// Schedule is one of Daily, Weekdays, Weekly or Custom.
type Schedule interface {
	Pattern() string
	Matches(day time.Weekday) bool
	schedule()
}

type Daily struct{}

func (Daily) Pattern() string { return model.PatternDaily }
func (Daily) Matches(time.Weekday) bool { return true }
func (Daily) schedule() {}

type Weekdays struct{}

func (Weekdays) Pattern() string { return model.PatternWeekdays }
func (Weekdays) Matches(day time.Weekday) bool {
	return day >= time.Monday && day <= time.Friday
}
func (Weekdays) schedule() {}

// Weekly is not pinned to a weekday and matches every day.
type Weekly struct{}

func (Weekly) Pattern() string { return model.PatternWeekly }
func (Weekly) Matches(time.Weekday) bool { return true }
func (Weekly) schedule() {}

type Custom struct {
	Days WeekdaySet
}

func (Custom) Pattern() string { return model.PatternCustom }
func (c Custom) Matches(day time.Weekday) bool {
	return c.Days.Has(day)
}
func (Custom) schedule() {}

// ParseSchedule builds the schedule stored for a rule. An unknown pattern
// yields nil and malformed CUSTOM days yield an empty Custom; neither ever
// matches.
func ParseSchedule(pattern string, daysOfWeek *string) Schedule {
	switch pattern {
	case model.PatternDaily:
		return Daily{}
	case model.PatternWeekdays:
		return Weekdays{}
	case model.PatternWeekly:
		return Weekly{}
	case model.PatternCustom:
		if daysOfWeek == nil {
			return Custom{}
		}
		return Custom{Days: decodeDays(*daysOfWeek)}
	default:
		return nil
	}
}

// ValidateSchedule is the strict form of ParseSchedule used before a rule
// is written.
func ValidateSchedule(pattern string, daysOfWeek *string) (Schedule, error) {
	switch pattern {
	case model.PatternDaily, model.PatternWeekdays, model.PatternWeekly:
		return ParseSchedule(pattern, nil), nil
	case model.PatternCustom:
		if daysOfWeek == nil {
			return nil, ErrInvalidDays
		}
		days, err := ParseDays(*daysOfWeek)
		if err != nil {
			return nil, err
		}
		return Custom{Days: days}, nil
	default:
		return nil, ErrInvalidPattern
	}
}

// ParseDays decodes a string-encoded JSON array of weekday indices and
// rejects anything but a non-empty array of integers in 0..6.
func ParseDays(raw string) (WeekdaySet, error) {
	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return 0, ErrInvalidDays
	}
	if len(values) == 0 {
		return 0, ErrInvalidDays
	}
	var set WeekdaySet
	for _, value := range values {
		if value < 0 || value > 6 {
			return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidDays, value)
		}
		set = set.With(time.Weekday(value))
	}
	return set, nil
}

// decodeDays never fails: unparsable input is the empty set and out of
// range members are dropped.
func decodeDays(raw string) WeekdaySet {
	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return 0
	}
	var set WeekdaySet
	for _, value := range values {
		set = set.With(time.Weekday(value))
	}
	return set
}

// EncodeDays is the canonical storage form, e.g. "[1,3,5]".
func EncodeDays(set WeekdaySet) string {
	days := set.Days()
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, fmt.Sprintf("%d", int(day)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// ShouldAppear reports whether rule materialises on date.
func ShouldAppear(rule model.RecurringTask, date time.Time) bool {
	schedule := ParseSchedule(rule.RecurrencePattern, rule.DaysOfWeek)
	if schedule == nil {
		return false
	}
	return schedule.Matches(date.Weekday())
}
