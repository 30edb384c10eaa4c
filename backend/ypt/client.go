package ypt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL  = "https://pi.tgclab.com"
	DefaultLinksURL = "https://firebasedynamiclinks.googleapis.com"

	maxResponseSize = 32 << 20
)

// Client talks to the study service's app API (reverse-engineered from the
// Android app) and to the dynamic-link shortener used for invite links.
type Client struct {
	baseURL  string
	linksURL string
	token    string
	linksKey string
	client   *http.Client
	logger   logrus.FieldLogger
	validate *validator.Validate
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithLinksURL(url string) Option {
	return func(c *Client) {
		c.linksURL = url
	}
}

// WithToken sets the bot's study-service token sent as "Authorization: JWT <token>".
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithLinksAPIKey(key string) Option {
	return func(c *Client) {
		c.linksKey = key
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		linksURL: DefaultLinksURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logrus.StandardLogger(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	endpoint string
	method   string
	url      string
	body     any
	auth     bool
}

// do sends req and decodes the response into out, which may be nil when the
// endpoint's response body is irrelevant.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", req.endpoint, err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		httpReq.Header.Set("Authorization", "JWT "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &UpstreamError{Endpoint: req.endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &UpstreamError{Endpoint: req.endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.WithFields(logrus.Fields{
		"endpoint": req.endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("study service request")

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if out == nil {
		if !ok {
			return &UpstreamError{Endpoint: req.endpoint, StatusCode: resp.StatusCode}
		}
		return nil
	}

	err = c.decode(req.endpoint, raw, out)
	if ok {
		return err
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return &UpstreamError{Endpoint: req.endpoint, StatusCode: resp.StatusCode}
}

// decode unmarshals raw into out and checks it against out's validate tags.
func (c *Client) decode(endpoint string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		var fieldErr *fieldError
		if errors.As(err, &typeErr) || errors.As(err, &fieldErr) {
			return &ValidationError{Endpoint: endpoint, Err: err}
		}
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("unparseable body: %w", err)}
	}
	if err := c.validate.Struct(out); err != nil {
		return &ValidationError{Endpoint: endpoint, Err: err}
	}
	return nil
}
