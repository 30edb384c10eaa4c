package ypt

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"yptstats/backend/models"
)

// Response schemas. Fields are pointers so that a missing field can be told
// apart from a zero value; the validate tags are checked after decoding.

type groupsResponse struct {
	Groups []groupRef `json:"gs" validate:"required,dive"`
}

type groupRef struct {
	ID *int64 `json:"id" validate:"required"`
}

type createdGroupResponse struct {
	Group *groupRef `json:"g" validate:"required"`
}

type groupMembersResponse struct {
	Members []memberSchema `json:"ms" validate:"required,dive"`
}

type memberSchema struct {
	UserID *int64  `json:"ud" validate:"required"`
	Name   *string `json:"n" validate:"required"`
}

type shortLinkResponse struct {
	ShortLink *string `json:"shortLink" validate:"required"`
}

type studyDataResponse struct {
	Days []studyDaySchema `json:"ls" validate:"required,dive"`
}

type studyDaySchema struct {
	Date           *string         `json:"dt" validate:"required"` // YYYY-MM-DD
	StudyMillis    *float64        `json:"sm" validate:"required"`
	LongestMillis  *float64        `json:"mm" validate:"required"`
	Name           *string         `json:"n" validate:"required"`
	Sessions       []sessionSchema `json:"ls" validate:"required,dive"`
	AllowedAppUses []sessionSchema `json:"as" validate:"required,dive"`
}

type sessionSchema struct {
	Subject *string    `json:"sb" validate:"required"`
	Millis  *float64   `json:"sm" validate:"required"`
	Start   *startTime `json:"st" validate:"required"`
}

// fieldError is returned by custom unmarshalers for values of the right JSON
// type but an unusable content.
type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *fieldError) Unwrap() error {
	return e.Err
}

// startTime accepts either a date string or a number of epoch milliseconds.
type startTime struct {
	time.Time
}

func (t *startTime) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatInt(int64(x), 10)
	default:
		return &fieldError{Field: "st", Err: fmt.Errorf("expected string or number, got %s", b)}
	}

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return &fieldError{Field: "st", Err: err}
	}
	t.Time = parsed.UTC()
	return nil
}

func (r *groupsResponse) ids() []int64 {
	return lo.Map(r.Groups, func(g groupRef, _ int) int64 {
		return *g.ID
	})
}

func (r *groupMembersResponse) members() []models.Member {
	return lo.Map(r.Members, func(m memberSchema, _ int) models.Member {
		return models.Member{UserID: *m.UserID, Name: *m.Name}
	})
}

func (r *shortLinkResponse) link() (string, error) {
	u, err := url.ParseRequestURI(*r.ShortLink)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("shortLink %q is not an absolute URL", *r.ShortLink)
	}
	return u.String(), nil
}

func (r *studyDataResponse) entries() ([]models.StudyLogEntry, error) {
	entries := make([]models.StudyLogEntry, 0, len(r.Days))
	for _, day := range r.Days {
		parsed, err := dateparse.ParseIn(*day.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid dt %q: %w", *day.Date, err)
		}
		entries = append(entries, models.StudyLogEntry{
			Date:               time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC),
			TotalStudyTime:     millis(*day.StudyMillis),
			LongestSession:     millis(*day.LongestMillis),
			Name:               *day.Name,
			StudySessions:      sessions(day.Sessions),
			AllowedAppSessions: sessions(day.AllowedAppUses),
		})
	}
	return entries, nil
}

func sessions(in []sessionSchema) []models.Session {
	return lo.Map(in, func(s sessionSchema, _ int) models.Session {
		return models.Session{
			Subject:   *s.Subject,
			Duration:  millis(*s.Millis),
			StartTime: s.Start.Time,
		}
	})
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
