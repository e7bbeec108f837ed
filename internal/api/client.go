// Package api is a client for the NDIE community backend's read endpoints.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second

	userAgent           = "ndoc"
	httpRetryCount      = 3
	httpRetryMaxWaitSec = 5
)

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	http    *resty.Client
	baseURL string
}

func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(timeout)
	client.SetRetryCount(httpRetryCount)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(httpRetryMaxWaitSec * time.Second)

	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &Client{http: client, baseURL: baseURL}
}

// NewWithClient wraps a preconfigured resty client.
func NewWithClient(client *resty.Client) *Client {
	return &Client{http: client, baseURL: client.BaseURL()}
}

func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) ListPosts(ctx context.Context, board Board) ([]PostSummary, error) {
	var result []PostSummary

	response, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(board.Path())
	if err != nil {
		return nil, oops.
			Code("API_ERROR").
			With("board", board).
			With("base_url", c.baseURL).
			Hint("Check that the backend is reachable at api.base_url").
			Wrapf(err, "listing %s posts", board)
	}

	if !response.IsSuccess() {
		return nil, statusError(response, board, 0)
	}

	return result, nil
}

func (c *Client) GetPost(ctx context.Context, board Board, id int64) (*Post, error) {
	result := &Post{}

	response, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		Get(board.Path() + "/" + strconv.FormatInt(id, 10))
	if err != nil {
		return nil, oops.
			Code("API_ERROR").
			With("board", board).
			With("id", id).
			Wrapf(err, "fetching %s post %d", board, id)
	}

	if !response.IsSuccess() {
		return nil, statusError(response, board, id)
	}

	if result.ID == 0 {
		result.ID = id
	}

	return result, nil
}

// GetAnswers returns the answers posted on a Q&A question. The backend
// reports at most one answer per question; an empty answer means none.
func (c *Client) GetAnswers(ctx context.Context, questionID int64) ([]Answer, error) {
	var result Answer

	response, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(BoardQnA.Path() + "/comment/" + strconv.FormatInt(questionID, 10))
	if err != nil {
		return nil, oops.
			Code("API_ERROR").
			With("board", BoardQnA).
			With("id", questionID).
			Wrapf(err, "fetching answers for question %d", questionID)
	}

	if !response.IsSuccess() {
		return nil, statusError(response, BoardQnA, questionID)
	}

	if result.ID == 0 && strings.TrimSpace(result.Content) == "" {
		return nil, nil
	}

	return []Answer{result}, nil
}

func statusError(response *resty.Response, board Board, id int64) error {
	builder := oops.
		With("board", board).
		With("status", response.StatusCode())
	if id != 0 {
		builder = builder.With("id", id)
	}

	if response.StatusCode() == http.StatusNotFound && id != 0 {
		return builder.
			Code("POST_NOT_FOUND").
			Hint("The post may have been deleted; run 'ndoc sync' to refresh").
			Errorf("%s post %d not found", board, id)
	}

	return builder.
		Code("API_ERROR").
		Errorf("backend returned status %d for %s", response.StatusCode(), board.Path())
}
