// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
)

// DefaultMaxRetryTime bounds retries of transient failures.
const DefaultMaxRetryTime = 30 * time.Second

var ErrUnexpectedResponse = errors.New("unexpected response")

// Client talks to a quickly-vote server.
type Client struct {
	baseURL      string
	http         *http.Client
	resolver     *identity.Resolver
	session      string
	maxRetryTime time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSession sends a session token; the server then votes as the account.
func WithSession(token string) Option {
	return func(c *Client) { c.session = strings.TrimSpace(token) }
}

// WithMaxRetryTime bounds retries of transient failures. Zero disables retrying.
func WithMaxRetryTime(d time.Duration) Option {
	return func(c *Client) { c.maxRetryTime = d }
}

// New returns a client for baseURL that votes as the identity resolver yields.
func New(baseURL string, resolver *identity.Resolver, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 15 * time.Second},
		resolver:     resolver,
		maxRetryTime: DefaultMaxRetryTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the token this client votes with.
func (c *Client) Identity() identity.Token {
	return c.resolver.Resolve()
}

// VoteResult is the server's answer to a vote.
type VoteResult struct {
	Status   int
	Header   http.Header
	Response models.VoteResponse
}

// Accepted reports whether the vote was recorded.
func (r VoteResult) Accepted() bool {
	return r.Status == http.StatusOK && r.Response.Success
}

// Vote submits a vote for candidateID. Server-side rejections (already voted,
// unknown candidate, closed election) are returned as results, not errors.
// Transient failures are retried with exponential backoff.
func (c *Client) Vote(ctx context.Context, candidateID string) (VoteResult, error) {
	body, err := json.Marshal(models.VoteRequest{
		CandidateID:   candidateID,
		IdentityToken: string(c.Identity()),
	})
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to encode vote: %w", err)
	}

	opts := []backoff.RetryOption{backoff.WithBackOff(backoff.NewExponentialBackOff())}
	if c.maxRetryTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(c.maxRetryTime))
	} else {
		opts = append(opts, backoff.WithMaxTries(1))
	}

	attempt := 0
	return backoff.Retry(ctx, func() (VoteResult, error) {
		attempt++
		res, err := c.postVote(ctx, body)
		if err != nil {
			slog.Debug("vote attempt failed", "attempt", attempt, "error", err)
			return VoteResult{}, err
		}
		if res.Status >= http.StatusInternalServerError {
			slog.Debug("vote attempt failed", "attempt", attempt, "status", res.Status)
			return res, retryError(res)
		}
		return res, nil
	}, opts...)
}

func (c *Client) postVote(ctx context.Context, body []byte) (VoteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vote", bytes.NewReader(body))
	if err != nil {
		return VoteResult{}, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return VoteResult{}, fmt.Errorf("vote request failed: %w", err)
	}
	defer resp.Body.Close()

	res := VoteResult{Status: resp.StatusCode, Header: resp.Header}
	if err := json.NewDecoder(resp.Body).Decode(&res.Response); err != nil {
		return res, fmt.Errorf("%w: status %d: %v", ErrUnexpectedResponse, resp.StatusCode, err)
	}
	return res, nil
}

// retryError honours the server's Retry-After header when present.
func retryError(res VoteResult) error {
	err := fmt.Errorf("server error %d: %s", res.Status, res.Response.Message)
	if secs, convErr := strconv.Atoi(res.Header.Get("Retry-After")); convErr == nil && secs > 0 {
		return backoff.RetryAfter(secs)
	}
	return err
}

// Election fetches an election and its candidates.
func (c *Client) Election(ctx context.Context, electionID string) (models.ElectionInfoResponse, error) {
	var info models.ElectionInfoResponse
	err := c.getJSON(ctx, "/elections/"+url.PathEscape(electionID), &info)
	return info, err
}

// Results fetches the current standings of an election.
func (c *Client) Results(ctx context.Context, electionID string) (models.ResultsResponse, error) {
	var results models.ResultsResponse
	err := c.getJSON(ctx, "/elections/"+url.PathEscape(electionID)+"/results", &results)
	return results, err
}

// MyVote asks the server which candidate this client's identity voted for.
func (c *Client) MyVote(ctx context.Context, electionID string) (models.MyVoteResponse, error) {
	var mine models.MyVoteResponse
	err := c.getJSON(ctx, "/elections/"+url.PathEscape(electionID)+"/my-vote", &mine)
	return mine, err
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Identity-Token", string(c.Identity()))
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %d %s", ErrUnexpectedResponse, resp.StatusCode, e.Message)
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.session != "" {
		req.Header.Set("Authorization", "Bearer "+c.session)
	}
}
