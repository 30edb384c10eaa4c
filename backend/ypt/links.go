package ypt

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const (
	endpointShortLinks = "v1/shortLinks"

	inviteDomain      = "https://invite.yeolpumta.com"
	inviteTarget      = "https://yeolpumta.com/invite"
	inviteTitle       = "One-time group for YPT Stats"
	inviteDescription = "Join this group to log in on YPT Stats."
	inviteImageURL    = "https://firebasestorage.googleapis.com/v0/b/yeolpumta-deeplink/o/social_images%2Fogtag_studygroup_en.png?alt=media&token=427f0278-8222-4afd-9b9e-a12d3b705764"
)

// LongInviteLink builds the unshortened dynamic link that opens the app on
// the invite page of groupID. Parameter names follow
// https://firebase.google.com/docs/dynamic-links/create-manually.
func LongInviteLink(groupID int64) string {
	target := url.Values{}
	target.Set("type", "study")
	target.Set("groupId", strconv.FormatInt(groupID, 10))

	q := url.Values{}
	q.Set("link", inviteTarget+"?"+target.Encode())
	// social preview
	q.Set("st", inviteTitle)
	q.Set("sd", inviteDescription)
	q.Set("si", inviteImageURL)
	// Google Play and App Store attribution
	q.Set("utm_campaign", "grouplink")
	q.Set("utm_medium", "invite")
	q.Set("utm_source", "pallo")
	q.Set("pt", "pallo")
	q.Set("apn", "com.pallo.passiontimerscoped")
	q.Set("ibi", "com.pallo.passionTimerScoped")
	q.Set("isi", "1441909643")

	return inviteDomain + "?" + q.Encode()
}

type shortLinkBody struct {
	LongDynamicLink string `json:"longDynamicLink"`
	Suffix          struct {
		Option string `json:"option"`
	} `json:"suffix"`
}

// CreateShortInviteLink shortens the invite link of groupID.
func (c *Client) CreateShortInviteLink(ctx context.Context, groupID int64) (string, error) {
	if c.linksKey == "" {
		return "", &UpstreamError{Endpoint: endpointShortLinks, Err: errors.New("no link shortener API key configured")}
	}

	body := shortLinkBody{LongDynamicLink: LongInviteLink(groupID)}
	body.Suffix.Option = "SHORT"

	q := url.Values{}
	q.Set("key", c.linksKey)

	var resp shortLinkResponse
	err := c.do(ctx, request{
		endpoint: endpointShortLinks,
		method:   http.MethodPost,
		url:      c.linksURL + "/" + endpointShortLinks + "?" + q.Encode(),
		body:     body,
	}, &resp)
	if err != nil {
		return "", err
	}

	link, err := resp.link()
	if err != nil {
		return "", &ValidationError{Endpoint: endpointShortLinks, Err: err}
	}
	return link, nil
}
