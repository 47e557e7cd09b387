package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"casenotify/internal/types"
)

// maxResponseBodySize bounds how much of an upstream answer is read (4 MB).
const maxResponseBodySize = 4 << 20

// apiVersionHeader is the header through which registries report their
// API version.
const apiVersionHeader = "API-version"

// RegistryClient is a JSON client for one registry API (cases, parties,
// objects or contact moments). Relative paths are resolved against BaseURL;
// absolute URLs, as returned inside registry resources, are used as-is.
type RegistryClient struct {
	name    string
	base    *BaseClient
	baseURL string
	auth    Authorizer
	logger  *slog.Logger
}

// RegistryClientConfig holds the settings for a RegistryClient.
type RegistryClientConfig struct {
	Name    string
	BaseURL string
	Auth    Authorizer
	Logger  *slog.Logger
}

// NewRegistryClient creates a RegistryClient on top of a BaseClient.
func NewRegistryClient(base *BaseClient, cfg RegistryClientConfig) *RegistryClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryClient{
		name:    cfg.Name,
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		auth:    cfg.Auth,
		logger:  logger,
	}
}

// Name returns the registry name used in logs and version reports.
func (c *RegistryClient) Name() string { return c.name }

// BaseURL returns the registry domain without trailing slash.
func (c *RegistryClient) BaseURL() string { return c.baseURL }

// Resolve turns a path into an absolute URL on this registry.
func (c *RegistryClient) Resolve(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	return c.baseURL + "/" + strings.TrimPrefix(pathOrURL, "/")
}

// GetJSON performs a GET and decodes the JSON answer into dst.
func (c *RegistryClient) GetJSON(ctx context.Context, pathOrURL string, dst any) error {
	_, err := c.do(ctx, http.MethodGet, pathOrURL, nil, dst)
	return err
}

// PostJSON performs a POST with a JSON body and decodes the answer into dst
// (which may be nil). The raw response body is returned in both the success
// and the failure case so callers can report it.
func (c *RegistryClient) PostJSON(ctx context.Context, pathOrURL string, body, dst any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, pathOrURL, body, dst)
}

func (c *RegistryClient) do(ctx context.Context, method, pathOrURL string, body, dst any) ([]byte, error) {
	target := c.Resolve(pathOrURL)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
				fmt.Sprintf("%s: failed to marshal request body", c.name), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("%s: failed to create request", c.name), err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		if err := c.auth.Authorize(req); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalConfiguration,
				fmt.Sprintf("%s: failed to authorize request", c.name), err)
		}
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return upstreamResponse(err), c.wrapTransportError(method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamHTTP,
			fmt.Sprintf("%s: failed to read response body", c.name), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "registry returned an error status",
			"registry", c.name,
			"method", method,
			"url", target,
			"status", resp.StatusCode,
		)
		return raw, types.NewAppErrorWithDetails(types.ErrCodeUpstreamHTTP,
			fmt.Sprintf("%s: %s %s returned %d", c.name, method, target, resp.StatusCode),
			nil,
			map[string]any{
				"status":   resp.StatusCode,
				"response": string(raw),
			},
		)
	}

	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			return raw, types.NewAppErrorWithDetails(types.ErrCodeDeserializationFailure,
				fmt.Sprintf("%s: response of %s does not match the expected schema", c.name, target),
				err,
				map[string]any{"response": string(raw)},
			)
		}
	}
	return raw, nil
}

// Version returns the API version the registry reports for its root
// endpoint. An empty string means the registry did not report one.
func (c *RegistryClient) Version(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.Resolve(path), nil)
	if err != nil {
		return "", err
	}
	if c.auth != nil {
		if err := c.auth.Authorize(req); err != nil {
			return "", err
		}
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return resp.Header.Get(apiVersionHeader), nil
}

// upstreamResponse returns the response body a transport error kept, if any.
func upstreamResponse(err error) []byte {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		if body, ok := appErr.Details["response"].(string); ok && body != "" {
			return []byte(body)
		}
	}
	return nil
}

func (c *RegistryClient) wrapTransportError(method, target string, err error) error {
	if appErr, ok := err.(*types.AppError); ok {
		return appErr.WithDetails(map[string]any{
			"registry": c.name,
			"request":  method + " " + target,
		})
	}
	return types.NewAppError(types.ErrCodeUpstreamHTTP,
		fmt.Sprintf("%s: %s %s failed: %v", c.name, method, target, err), err)
}
