// Package remote implements the catalog and auth client contracts against the
// backend HTTP API. The engine and manager treat these as opaque request
// functions; everything transport-shaped lives here.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dinver/appcore/internal/serviceerr"
)

const headerCorrelationID = "X-Correlation-Id"

// newRequest builds a JSON API request carrying a fresh correlation ID.
func newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set(headerCorrelationID, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func decodeJSON(resp *http.Response, into any) error {
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// statusErr maps a non-2xx response to the failure taxonomy. The backend uses
// 400 for both malformed input and duplicate registrations, which callers
// surface as a conflict.
func statusErr(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return serviceerr.ErrInvalidCredentials
	case http.StatusBadRequest, http.StatusConflict:
		return serviceerr.ErrConflict
	case http.StatusNotFound:
		return serviceerr.ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected status %d", serviceerr.ErrUnknown, status)
	}
}
