package ypt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yptstats/backend/models"
)

const testToken = "bot-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithBaseURL(srv.URL),
		WithLinksURL(srv.URL),
		WithToken(testToken),
		WithLinksAPIKey("links-key"),
	)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestCreateGroup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/group/make", r.URL.Path)
		assert.Equal(t, "JWT "+testToken, r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, "ypt stats [42]", body["title"])
		assert.Equal(t, "1234", body["password"])
		assert.EqualValues(t, 2, body["maxMemberCount"])
		assert.EqualValues(t, 84, body["categoryId"])
		assert.Equal(t, "link", body["inviteLink"])
		assert.Equal(t, true, body["new"])

		w.Write([]byte(`{"g":{"id":991,"title":"ypt stats [42]"}}`))
	})

	id, err := c.CreateGroup(context.Background(), CreateGroupRequest{
		Title:          "ypt stats [42]",
		Password:       "1234",
		MaxMemberCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(991), id)
}

func TestCreateGroupMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"g":{}}`))
	})

	_, err := c.CreateGroup(context.Background(), CreateGroupRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, endpointMakeGroup, validationErr.Endpoint)
}

func TestCreateGroupWrongType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"g":{"id":"991"}}`))
	})

	_, err := c.CreateGroup(context.Background(), CreateGroupRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestListGroupMembersIsUnauthenticated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/logs/group/members", r.URL.Path)
		assert.Equal(t, "17", r.URL.Query().Get("groupID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Write([]byte(`{"ms":[{"ud":1,"n":"bot"},{"ud":7271448,"n":"haziq21"}]}`))
	})

	members, err := c.ListGroupMembers(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{
		{UserID: 1, Name: "bot"},
		{UserID: 7271448, Name: "haziq21"},
	}, members)
}

func TestListGroupMembersMissingName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ms":[{"ud":1}]}`))
	})

	_, err := c.ListGroupMembers(context.Background(), 17)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestListGroups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/groups", r.URL.Path)
		assert.Equal(t, "JWT "+testToken, r.Header.Get("Authorization"))
		w.Write([]byte(`{"gs":[{"id":3},{"id":5},{"id":8}]}`))
	})

	ids, err := c.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 8}, ids)
}

func TestDeleteGroup(t *testing.T) {
	var deleted float64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/delete", r.URL.Path)
		deleted = decodeBody(t, r)["id"].(float64)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.DeleteGroup(context.Background(), 12))
	assert.Equal(t, float64(12), deleted)
}

func TestDeleteGroupNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.DeleteGroup(context.Background(), 12)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusForbidden, upstreamErr.StatusCode)
}

func TestNon2xxPrefersValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad group"}`))
	})

	_, err := c.ListGroups(context.Background())
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestNon2xxWithValidBodyIsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"gs":[]}`))
	})

	_, err := c.ListGroups(context.Background())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
}

func TestUnparseableBodyIsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>502 Bad Gateway</html>`))
	})

	_, err := c.ListGroups(context.Background())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(WithBaseURL(srv.URL))

	_, err := c.ListGroups(context.Background())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Zero(t, upstreamErr.StatusCode)
}

func TestCreateShortInviteLink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/shortLinks", r.URL.Path)
		assert.Equal(t, "links-key", r.URL.Query().Get("key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body shortLinkBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SHORT", body.Suffix.Option)
		assert.Equal(t, LongInviteLink(55), body.LongDynamicLink)

		w.Write([]byte(`{"shortLink":"https://invite.yeolpumta.com/13cF","previewLink":"https://invite.yeolpumta.com/13cF?d=1"}`))
	})

	link, err := c.CreateShortInviteLink(context.Background(), 55)
	require.NoError(t, err)
	assert.Equal(t, "https://invite.yeolpumta.com/13cF", link)
}

func TestCreateShortInviteLinkRejectsNonURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shortLink":"13cF"}`))
	})

	_, err := c.CreateShortInviteLink(context.Background(), 55)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateShortInviteLinkWithoutKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	c := NewClient(WithLinksURL(srv.URL))

	_, err := c.CreateShortInviteLink(context.Background(), 55)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.False(t, called)
}

func TestLongInviteLink(t *testing.T) {
	u, err := url.Parse(LongInviteLink(4242))
	require.NoError(t, err)
	assert.Equal(t, "invite.yeolpumta.com", u.Host)

	q := u.Query()
	assert.Equal(t, "https://yeolpumta.com/invite?groupId=4242&type=study", q.Get("link"))
	assert.Equal(t, inviteImageURL, q.Get("si"))
	assert.Equal(t, "grouplink", q.Get("utm_campaign"))
	assert.Equal(t, "com.pallo.passiontimerscoped", q.Get("apn"))
	assert.Equal(t, "1441909643", q.Get("isi"))
}

func TestSetInviteInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/info/edit", r.URL.Path)
		body := decodeBody(t, r)
		assert.EqualValues(t, 9, body["id"])
		assert.Equal(t, "https://invite.yeolpumta.com/x", body["inviteLink"])
	})

	require.NoError(t, c.SetInviteInfo(context.Background(), 9, "https://invite.yeolpumta.com/x"))
}

const studyLogJSON = `{"ls":[
	{"dt":"2024-01-01","sm":3600000,"mm":1800000,"n":"haziq21",
	 "ls":[{"sb":"Math","sm":1800000,"st":"2024-01-01T09:00:00Z"},{"sb":"Physics","sm":1800000,"st":1704103200000}],
	 "as":[{"sb":"Dictionary","sm":60000,"st":"2024-01-01 10:30:00"}]},
	{"dt":"2024-01-02","sm":600000,"mm":600000,"n":"haziq21","ls":[],"as":[]}
]}`

func TestFetchStudyLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs/range/days", r.URL.Path)
		assert.Equal(t, "JWT "+testToken, r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.EqualValues(t, 7271448, body["id"])
		assert.Equal(t, true, body["isMember"])
		assert.Equal(t, "2000-1-1", body["startDate"])
		assert.Equal(t, "3000-1-1", body["endDate"])

		io.WriteString(w, studyLogJSON)
	})

	entries, err := c.FetchStudyLog(context.Background(), 7271448,
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	want := []models.StudyLogEntry{
		{
			Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TotalStudyTime: time.Hour,
			LongestSession: 30 * time.Minute,
			Name:           "haziq21",
			StudySessions: []models.Session{
				{Subject: "Math", Duration: 30 * time.Minute, StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
				{Subject: "Physics", Duration: 30 * time.Minute, StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
			},
			AllowedAppSessions: []models.Session{
				{Subject: "Dictionary", Duration: time.Minute, StartTime: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
			},
		},
		{
			Date:               time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			TotalStudyTime:     10 * time.Minute,
			LongestSession:     10 * time.Minute,
			Name:               "haziq21",
			StudySessions:      []models.Session{},
			AllowedAppSessions: []models.Session{},
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestFetchStudyLogInvalid(t *testing.T) {
	cases := map[string]string{
		"missing sessions": `{"ls":[{"dt":"2024-01-01","sm":1,"mm":1,"n":"x","as":[]}]}`,
		"bad date":         `{"ls":[{"dt":"yesterday","sm":1,"mm":1,"n":"x","ls":[],"as":[]}]}`,
		"bad start time":   `{"ls":[{"dt":"2024-01-01","sm":1,"mm":1,"n":"x","ls":[{"sb":"Math","sm":1,"st":true}],"as":[]}]}`,
		"string minutes":   `{"ls":[{"dt":"2024-01-01","sm":"1","mm":1,"n":"x","ls":[],"as":[]}]}`,
		"no log":           `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})

			_, err := c.FetchStudyLog(context.Background(), 1, time.Now(), time.Now())
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, endpointStudyLog, validationErr.Endpoint)
		})
	}
}
