package models

import "time"

type Session struct {
	Subject   string        `json:"subject"`
	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"startTime"`
}

// StudyLogEntry is one calendar day of a user's study log.
type StudyLogEntry struct {
	Date               time.Time     `json:"date"` // UTC midnight
	TotalStudyTime     time.Duration `json:"totalStudyTime"`
	LongestSession     time.Duration `json:"longestSession"`
	Name               string        `json:"name"`
	StudySessions      []Session     `json:"studySessions"`
	AllowedAppSessions []Session     `json:"allowedAppSessions"`
}
