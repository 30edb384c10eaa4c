package ypt

import (
	"context"
	"net/http"
	"time"

	"yptstats/backend/models"
)

const (
	endpointStudyLog = "logs/range/days"

	// The study service accepts unpadded dates, e.g. 2000-1-1.
	rangeDateLayout = "2006-1-2"
)

type studyLogBody struct {
	ID        int64  `json:"id"`
	IsMember  bool   `json:"isMember"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FetchStudyLog returns one entry per day the user studied between start and
// end, in the order the study service sends them.
func (c *Client) FetchStudyLog(ctx context.Context, userID int64, start, end time.Time) ([]models.StudyLogEntry, error) {
	var resp studyDataResponse
	err := c.do(ctx, request{
		endpoint: endpointStudyLog,
		method:   http.MethodPost,
		url:      c.baseURL + "/" + endpointStudyLog,
		body: studyLogBody{
			ID:        userID,
			IsMember:  true,
			StartDate: start.Format(rangeDateLayout),
			EndDate:   end.Format(rangeDateLayout),
		},
		auth: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	entries, err := resp.entries()
	if err != nil {
		return nil, &ValidationError{Endpoint: endpointStudyLog, Err: err}
	}
	return entries, nil
}
