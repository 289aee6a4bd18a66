package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-backend/pkg/config"
	pkgerrors "storefront-backend/pkg/errors"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/types"
)

var errBaseURLRequired = errors.New("remote API base URL is required")

// Client talks to a remote storefront API with centralized envelope decoding
// and error mapping. It is the transport for the REST storage binding.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient validates the remote API settings and builds the client.
func NewClient(cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.RemoteBaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logg,
	}, nil
}

// Get issues a GET and decodes the success payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the success payload into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the success payload into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE and decodes the success payload into out when given.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(ctx, method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	var envelope types.RawSuccessEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "response envelope missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// decodeError rebuilds the typed error the remote side reported so callers
// observe the same codes regardless of binding.
func (c *Client) decodeError(ctx context.Context, method, path string, status int, raw []byte) error {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		if c.logger != nil {
			ctx = c.logger.WithFields(ctx, map[string]any{"status": status, "path": path})
			c.logger.Warn(ctx, "remote API returned unparseable error")
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s %s returned status %d", method, path, status))
	}

	typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	if envelope.Error.Details != nil {
		typed = typed.WithDetails(envelope.Error.Details)
	}
	return typed
}
