package models

import (
	"math"
	"time"
)

type Stats struct {
	TotalStudyTime      time.Duration            `json:"totalStudyTime"`
	TotalAllowedAppTime time.Duration            `json:"totalAllowedAppTime"`
	LongestStreak       int                      `json:"longestStreak"` // days
	SubjectTimings      map[string]time.Duration `json:"subjectTimings"`
}

// StudyHours returns the total study time rounded to whole hours.
func (s Stats) StudyHours() int {
	return int(math.Round(s.TotalStudyTime.Hours()))
}
