package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertRedirect verifies a redirect response and its Location header
func AssertRedirect(t *testing.T, resp *http.Response, expectedLocation string) {
	t.Helper()

	require.True(t, resp.StatusCode >= 300 && resp.StatusCode < 400,
		"expected redirect, got status %d", resp.StatusCode)
	assert.Equal(t, expectedLocation, resp.Header.Get("Location"), "unexpected redirect target")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// DecodeRPCResult verifies a successful RPC envelope and decodes result.data into v
func DecodeRPCResult(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "unexpected status code")

	var envelope struct {
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
	}
	AssertJSONResponse(t, resp, &envelope)
	require.NotNil(t, envelope.Result.Data, "missing result data")

	if v != nil {
		require.NoError(t, json.Unmarshal(envelope.Result.Data, v), "failed to decode result data")
	}
}

// AssertRPCError verifies an RPC error envelope with the expected code and HTTP status
func AssertRPCError(t *testing.T, resp *http.Response, expectedStatus int, expectedCode string) {
	t.Helper()

	defer resp.Body.Close()
	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Data    struct {
				Code       string `json:"code"`
				HTTPStatus int    `json:"httpStatus"`
			} `json:"data"`
		} `json:"error"`
	}
	AssertJSONResponse(t, resp, &envelope)
	assert.Equal(t, expectedCode, envelope.Error.Data.Code, "unexpected error code")
	assert.Equal(t, expectedStatus, envelope.Error.Data.HTTPStatus, "error httpStatus mismatch")
	assert.NotEmpty(t, envelope.Error.Message, "error message should not be empty")
}

// SessionCookies returns access and refresh cookie values from a response,
// empty strings when not set.
func SessionCookies(t *testing.T, resp *http.Response) (access, refresh string) {
	t.Helper()

	for _, c := range resp.Cookies() {
		switch c.Name {
		case "mino-access-token":
			access = c.Value
		case "mino-refresh-token":
			refresh = c.Value
		}
	}
	return access, refresh
}
