// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pulsebot/pulsebot/internal/config"
)

// TimeOfDay is a wall-clock trigger time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Trigger is a recurring daily firing slot for one category.
type Trigger struct {
	Category config.Category
	At       TimeOfDay
	NextRun  time.Time
}

// ParseTimes parses a comma-separated HH:MM list. Entries are whitespace
// tolerant; malformed or duplicate entries are dropped, result is sorted.
func ParseTimes(raw string) []TimeOfDay {
	seen := make(map[TimeOfDay]bool)
	var times []TimeOfDay

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		tod, err := parseTimeOfDay(part)
		if err != nil {
			continue
		}
		if seen[tod] {
			continue
		}
		seen[tod] = true
		times = append(times, tod)
	}

	sort.Slice(times, func(i, j int) bool {
		if times[i].Hour != times[j].Hour {
			return times[i].Hour < times[j].Hour
		}
		return times[i].Minute < times[j].Minute
	})

	return times
}

func parseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// nextOccurrence returns the first wall-clock instant of tod strictly after
// now.
func nextOccurrence(tod TimeOfDay, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), tod.Hour, tod.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// advance moves the trigger past now. A process pause spanning several slots
// collapses into a single catch-up firing: the next run lands on the first
// future occurrence, not on each missed one.
func (t *Trigger) advance(now time.Time) {
	for !t.NextRun.After(now) {
		t.NextRun = t.NextRun.AddDate(0, 0, 1)
	}
}
