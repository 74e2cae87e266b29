package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUpstream is returned when the assistant backend is unreachable,
	// unconfigured, or responds with something unusable.
	ErrUpstream = errors.New("assistant backend unavailable")
)

// FallbackReply is what callers show when the backend fails; the chat
// surface degrades instead of erroring out.
const FallbackReply = "Sorry, no response."

// EmptyPromptReply is returned for blank messages without ever reaching
// the backend.
const EmptyPromptReply = "Please ask a question!"

// Client is a stateless gateway to the conversational assistant backend.
// Each Ask is a single request/response exchange; any conversation memory
// is the caller's to resend.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates an assistant gateway for the given backend URL. The
// URL may be empty, in which case every Ask reports ErrUpstream.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		// Generation can be slow, give the backend room to answer.
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask sends a single message to the assistant and returns its reply.
// Blank messages short-circuit to a canned prompt.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return EmptyPromptReply, nil
	}

	if c.url == "" {
		return "", fmt.Errorf("%w: no backend configured", ErrUpstream)
	}

	body, err := json.Marshal(askRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: backend returned %s", ErrUpstream, resp.Status)
	}

	reply := askResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	if reply.Reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}

	return reply.Reply, nil
}
