package source

import (
	"regexp"
	"strconv"
	"time"
)

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+) Days? Ago$`)

// parsePostedOn converts a Workday relative date string ("Posted Today",
// "Posted 3 Days Ago") to an approximate UTC timestamp. "Posted 30+ Days
// Ago" and unknown formats yield nil.
func parsePostedOn(postedOn string) *time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if matches := daysAgoRegex.FindStringSubmatch(postedOn); matches != nil {
		if n, err := strconv.Atoi(matches[1]); err == nil {
			t := today.AddDate(0, 0, -n)
			return &t
		}
	}

	return nil
}

// parseTimePtr parses value with the given layout, returning nil on failure.
func parseTimePtr(layout, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	return &t
}
