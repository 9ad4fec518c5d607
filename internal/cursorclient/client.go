// Package cursorclient is the HTTP boundary to Cursor's AgentService and
// BidiService endpoints: it implements session.Transport and attaches the
// header set every Cursor call requires.
package cursorclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/wire"
	"github.com/google/uuid"
)

const clientVersion = "1.0.0"

// Client is a session's HTTP boundary to Cursor's endpoints.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Token    func() string
	Timezone string
}

// New creates a Client. token is called fresh on every request so a
// credential refresh is picked up without re-wiring the client.
func New(baseURL string, token func() string) *Client {
	return &Client{
		BaseURL:  baseURL,
		HTTP:     &http.Client{Timeout: 0}, // streaming calls manage their own deadlines
		Token:    token,
		Timezone: time.Local.String(),
	}
}

func (c *Client) setCommonHeaders(req *http.Request, requestID string) {
	req.Header.Set("authorization", "Bearer "+c.Token())
	req.Header.Set("x-cursor-checksum", checksum())
	req.Header.Set("x-cursor-client-version", clientVersion)
	req.Header.Set("x-cursor-client-type", "cli")
	req.Header.Set("x-cursor-timezone", c.Timezone)
	req.Header.Set("x-ghost-mode", "false")
	req.Header.Set("x-request-id", requestID)
}

// checksum derives the client-integrity header Cursor expects on every
// call. The exact algorithm is opaque server-side; this derives a stable
// per-process value from the client version rather than a per-request
// nonce, since nothing in the observed traffic suggests it varies call to
// call.
func checksum() string {
	sum := sha256.Sum256([]byte("cursorbridge/" + clientVersion))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}

// OpenRunSSE opens the streaming RunSSE call, whose body is a framed
// BidiRequestId carrying the session's own request id.
func (c *Client) OpenRunSSE(ctx context.Context, requestID string) (io.ReadCloser, error) {
	body := cursorproto.BidiRequestID{RequestID: requestID}.Encode()
	framed := wire.EncodeFrame(nil, 0, body)
	return c.OpenRunSSEWithBody(ctx, requestID, framed)
}

// OpenRunSSEWithBody opens RunSSE with an explicit pre-framed request body.
func (c *Client) OpenRunSSEWithBody(ctx context.Context, requestID string, framedBody []byte) (io.ReadCloser, error) {
	url := c.BaseURL + "/agent.v1.AgentService/RunSSE"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(framedBody))
	if err != nil {
		return nil, fmt.Errorf("cursorclient: build RunSSE request: %w", err)
	}
	req.Header.Set("content-type", "application/grpc-web+proto")
	req.Header.Set("x-cursor-streaming", "true")
	c.setCommonHeaders(req, requestID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cursorclient: RunSSE: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, errUnauthorized
	}
	return resp.Body, nil
}

// BidiAppend issues one unary BidiAppend call carrying framedBody.
func (c *Client) BidiAppend(ctx context.Context, framedBody []byte) error {
	requestID := uuid.NewString()
	url := c.BaseURL + "/aiserver.v1.BidiService/BidiAppend"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(framedBody))
	if err != nil {
		return fmt.Errorf("cursorclient: build BidiAppend request: %w", err)
	}
	req.Header.Set("content-type", "application/grpc-web+proto")
	c.setCommonHeaders(req, requestID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cursorclient: BidiAppend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cursorclient: BidiAppend status %d", resp.StatusCode)
	}
	return nil
}

var errUnauthorized = fmt.Errorf("cursorclient: unauthorized")
