// Package stats folds a user's study log into summary statistics.
package stats

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"yptstats/backend/models"
)

// Compute returns the summary statistics of entries. Entries are expected in
// ascending date order; a sorted copy is used regardless, so the input is
// never modified.
func Compute(entries []models.StudyLogEntry) models.Stats {
	days := slices.Clone(entries)
	slices.SortStableFunc(days, func(a, b models.StudyLogEntry) int {
		return a.Date.Compare(b.Date)
	})

	stats := models.Stats{
		SubjectTimings: map[string]time.Duration{},
	}

	// Streaks count calendar days, not 24h intervals, so DST shifts in the
	// dates' location cannot break them.
	longestStreak, currentStreak := 0, 0
	var lastDay int64
	for i, day := range days {
		stats.TotalStudyTime += day.TotalStudyTime
		stats.TotalAllowedAppTime += lo.SumBy(day.AllowedAppSessions, func(s models.Session) time.Duration {
			return s.Duration
		})
		for _, session := range day.StudySessions {
			stats.SubjectTimings[session.Subject] += session.Duration
		}

		dayNumber := civilDay(day.Date)
		switch {
		case i > 0 && dayNumber == lastDay:
			// A second entry for the same day neither extends nor breaks a streak.
		case i > 0 && dayNumber == lastDay+1:
			currentStreak++
		default:
			longestStreak = max(longestStreak, currentStreak)
			currentStreak = 1
		}
		lastDay = dayNumber
	}
	stats.LongestStreak = max(longestStreak, currentStreak)

	return stats
}

// civilDay returns the number of days between 1970-01-01 and t's calendar
// date in t's own location.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / (24 * 60 * 60)
}
