// Package remote is the HTTP client for the managed backend: the content
// read API and the message write API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrFetchFailed marks a failed content read: transport error, non-2xx
// status or malformed body. Retryable by the caller.
var ErrFetchFailed = errors.New("content fetch failed")

// ErrWriteFailed marks a failed message write. The outbox keeps the entry so
// replay-on-reconnect retries it.
var ErrWriteFailed = errors.New("message write failed")

// Verse is one verse as returned by the content API.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Chapter is the content API response for one chapter.
type Chapter struct {
	Verses []Verse `json:"verses"`
}

// OutboundMessage is the payload for the message write API. ClientID is the
// idempotency key; the server treats a replayed ClientID as a no-op.
type OutboundMessage struct {
	SenderID      string `json:"senderId"`
	Payload       string `json:"payload"`
	ClientID      string `json:"clientId"`
	AttachmentRef string `json:"attachmentRef,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

type ack struct {
	MessageID string `json:"messageId"`
}

// Client talks to the remote backend with an explicit per-call timeout.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the given base URL, e.g.
// "https://api.selah.app/v1".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchChapter retrieves one chapter of one translation.
func (c *Client) FetchChapter(ctx context.Context, translation, book string, chapter int) (*Chapter, error) {
	q := url.Values{}
	q.Set("book", book)
	q.Set("chapter", strconv.Itoa(chapter))
	q.Set("translation", translation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/content?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("chapter fetch failed",
			zap.String("book", book),
			zap.Int("chapter", chapter),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("chapter fetch rejected",
			zap.String("book", book),
			zap.Int("chapter", chapter),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var ch Chapter
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrFetchFailed, err)
	}
	if len(ch.Verses) == 0 {
		return nil, fmt.Errorf("%w: empty chapter %s/%s/%d", ErrFetchFailed, translation, book, chapter)
	}
	return &ch, nil
}

// CreateMessage submits one outbound message and returns the server message
// id from the ack.
func (c *Client) CreateMessage(ctx context.Context, m *OutboundMessage) (string, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrWriteFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("message write failed",
			zap.String("client_id", m.ClientID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("message write rejected",
			zap.String("client_id", m.ClientID),
			zap.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("%w: status %d", ErrWriteFailed, resp.StatusCode)
	}

	var a ack
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return "", fmt.Errorf("%w: decode ack: %w", ErrWriteFailed, err)
	}
	return a.MessageID, nil
}

// Probe checks backend reachability. Used by the connectivity monitor.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}
