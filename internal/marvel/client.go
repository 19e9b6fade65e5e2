// Package marvel is the client for the upstream comics-character catalog.
//
// REQUEST SHAPE:
// Every call is a GET with three auth query parameters (ts, apikey, hash,
// see auth.go) plus the call's own parameters. The answer is always an
// envelope {code, status, data:{results, total, count, offset}}.
//
// ERROR CLASSIFICATION:
//
//	transport failure, timeout, HTTP 5xx  → apperror.ErrUpstreamUnavailable
//	envelope code != 200                  → apperror.ErrUpstreamProtocol
//	lookup with 404 or no results         → apperror.ErrNotFound
//
// There is no retry: one attempt per call, failures surface as typed errors.
package marvel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sakif/marvel-catalog/internal/apperror"
	"github.com/sakif/marvel-catalog/internal/model"
)

const (
	DefaultBaseURL = "https://gateway.marvel.com/v1/public"
	DefaultTimeout = 10 * time.Second

	// MinLimit and MaxLimit bound the page size actually sent upstream.
	MinLimit = 1
	MaxLimit = 100
)

// Config holds what the client needs to reach and authenticate with the upstream.
type Config struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration // zero means DefaultTimeout
}

// ListParams selects one page of the catalog.
// An empty NameStartsWith pages the whole catalog.
type ListParams struct {
	NameStartsWith string
	Limit          int
	Offset         int
}

// Client talks to the upstream catalog. It is safe for concurrent use.
type Client struct {
	http       *resty.Client
	publicKey  string
	privateKey string
	logger     *slog.Logger

	// now is swapped in tests to pin the signing timestamp.
	now func() time.Time
}

// NewClient builds a Client on top of a resty client with a fixed deadline.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       httpClient,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		logger:     logger,
		now:        time.Now,
	}
}

// ClampLimit forces limit into [MinLimit, MaxLimit]. Values are substituted,
// never rejected.
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListCharacters fetches one page of characters.
func (c *Client) ListCharacters(ctx context.Context, p ListParams) (*model.CharacterPage, error) {
	params := map[string]string{
		"limit":  strconv.Itoa(ClampLimit(p.Limit)),
		"offset": strconv.Itoa(p.Offset),
	}
	if p.NameStartsWith != "" {
		params["nameStartsWith"] = p.NameStartsWith
	}

	env, httpStatus, err := c.get(ctx, "/characters", params)
	if err != nil {
		return nil, err
	}
	if code := env.statusCode(httpStatus); code != http.StatusOK {
		return nil, apperror.UpstreamProtocol(code, env.statusText())
	}

	page := &model.CharacterPage{
		Characters: make([]model.Character, 0, len(env.Data.Results)),
		Total:      env.Data.Total,
		Count:      env.Data.Count,
		Offset:     env.Data.Offset,
	}
	for _, raw := range env.Data.Results {
		page.Characters = append(page.Characters, normalize(raw))
	}
	return page, nil
}

// GetCharacter fetches a single character by its upstream id.
func (c *Client) GetCharacter(ctx context.Context, id int) (*model.Character, error) {
	env, httpStatus, err := c.get(ctx, fmt.Sprintf("/characters/%d", id), nil)
	if err != nil {
		return nil, err
	}

	code := env.statusCode(httpStatus)
	switch {
	case code == http.StatusNotFound || httpStatus == http.StatusNotFound:
		return nil, apperror.NotFound("character", strconv.Itoa(id))
	case code != http.StatusOK:
		return nil, apperror.UpstreamProtocol(code, env.statusText())
	case len(env.Data.Results) == 0:
		return nil, apperror.NotFound("character", strconv.Itoa(id))
	}

	character := normalize(env.Data.Results[0])
	return &character, nil
}

// redactURL strips the request URL from a transport error. *url.Error
// renders the full query string, which holds apikey and hash.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// get performs one signed GET and decodes the envelope. It returns the HTTP
// status alongside so callers can fall back on it when the envelope has no code.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (*envelope, int, error) {
	query := authParams(c.now(), c.publicKey, c.privateKey)
	for k, v := range params {
		query[k] = v
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		err = redactURL(err)
		c.logger.Error("upstream request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, 0, apperror.UpstreamUnavailable(err)
	}

	status := resp.StatusCode()
	c.logger.Debug("upstream request",
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)

	if status >= http.StatusInternalServerError {
		return nil, status, apperror.UpstreamUnavailable(fmt.Errorf("upstream returned HTTP %d", status))
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if status != http.StatusOK {
			// Non-JSON error page: let the HTTP status stand in for the envelope.
			return &envelope{Status: http.StatusText(status)}, status, nil
		}
		return nil, status, fmt.Errorf("marvel: decoding %s response: %w", path, err)
	}
	return &env, status, nil
}
