// Package testutil provides helpers shared by the end-to-end storefront tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Response is the JSON envelope of every API response
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client sends requests to an engine as one storefront visitor.
type Client struct {
	Engine  http.Handler
	Headers map[string]string
}

// NewClient returns a client identified by the given session id
func NewClient(engine http.Handler, sessionID string) *Client {
	return &Client{
		Engine:  engine,
		Headers: map[string]string{"X-Session-ID": sessionID},
	}
}

// Do performs the request and returns the recorder
func (c *Client) Do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.Engine.ServeHTTP(w, req)
	return w
}

// Expect performs the request, asserts the status and decodes the data
// payload into out when it is non-nil.
func (c *Client) Expect(t *testing.T, status int, method, path string, body, out any) Response {
	t.Helper()

	w := c.Do(t, method, path, body)
	require.Equal(t, status, w.Code, "%s %s: %s", method, path, w.Body.String())
	return Decode(t, w, out)
}

// Decode unmarshals the envelope and its data
func Decode(t *testing.T, w *httptest.ResponseRecorder, out any) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}
