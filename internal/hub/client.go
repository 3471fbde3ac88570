// Package hub is the client for the hub control API: server lifecycle,
// scoped user tokens, sharing and the read passthroughs the rest of the
// service builds on. One Client instance belongs to one logical task;
// the token stack is per-instance state, so concurrent owners must use
// distinct instances.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"apphub/internal/config"
	"apphub/internal/constants"
	"apphub/internal/errors"
	"apphub/internal/logger"
)

// Client talks to the hub control API. It holds a stack of bearer
// tokens; the service-level token sits at the bottom and scoped user
// tokens are pushed on top for the duration of one operation.
type Client struct {
	endpoint string
	username string
	tokens   []string
	client   *http.Client
	logger   *slog.Logger

	// shareSupport caches the sharing feature probe, nil until probed.
	shareSupport *bool
}

// New creates a client acting with the service-level token only.
func New(cfg *config.Config, log *slog.Logger) *Client {
	return NewForUser(cfg, log, "")
}

// NewForUser creates a client whose identity-requiring operations run as
// username via scoped tokens.
func NewForUser(cfg *config.Config, log *slog.Logger, username string) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		endpoint: cfg.HubAPIURL,
		username: username,
		tokens:   []string{cfg.HubAPIToken},
		client: &http.Client{
			Timeout: constants.HubRequestTimeout,
		},
		logger: log,
	}
}

// Username returns the subject username this client acts as, empty for
// the plain service identity.
func (c *Client) Username() string {
	return c.username
}

// token returns the credential currently on top of the stack.
func (c *Client) token() string {
	return c.tokens[len(c.tokens)-1]
}

func (c *Client) pushToken(token string) {
	c.tokens = append(c.tokens, token)
}

func (c *Client) popToken() {
	if len(c.tokens) > 1 {
		c.tokens = c.tokens[:len(c.tokens)-1]
	}
}

// request describes one control API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

// response carries the raw result of one control API call.
type response struct {
	statusCode int
	body       []byte
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	apiURL, err := url.JoinPath(c.endpoint, path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		apiURL = apiURL + "?" + query.Encode()
	}
	return apiURL, nil
}

// do makes an HTTP request to the control API with the current token.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	var bodyReader io.Reader
	if req.body != nil {
		jsonData, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	apiURL, err := c.buildURL(req.path, req.query)
	if err != nil {
		return nil, fmt.Errorf("invalid hub API endpoint: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.ContentTypeHeader, "application/json")
	httpReq.Header.Set(constants.AuthorizationHeader, constants.TokenAuthPrefix+c.token())

	logArgs := []any{
		"operation", "Hub.Request",
		"method", req.method,
		"url", apiURL,
		"hasBody", req.body != nil,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	c.logger.Debug("calling hub control API", logArgs...)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("received hub response",
		"status", resp.StatusCode,
		"bodySize", len(body),
		"method", req.method,
		"url", apiURL)

	return &response{
		statusCode: resp.StatusCode,
		body:       body,
	}, nil
}

// doJSON makes a request, converts hub error envelopes into AppErrors
// and unmarshals success payloads into result when non-nil.
func (c *Client) doJSON(ctx context.Context, req request, result any) (int, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return 0, err
	}

	if resp.statusCode >= constants.HTTPStatusBadRequest {
		return resp.statusCode, hubError(resp)
	}

	if result == nil || resp.statusCode == http.StatusNoContent || len(resp.body) == 0 {
		return resp.statusCode, nil
	}

	if err := json.Unmarshal(resp.body, result); err != nil {
		c.logger.Debug("response body", "body", string(resp.body))
		return resp.statusCode, fmt.Errorf("failed to parse hub response: %w", err)
	}

	return resp.statusCode, nil
}

// hubError surfaces the hub's own error detail verbatim.
func hubError(resp *response) error {
	var doc struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	detail := string(resp.body)
	if err := json.Unmarshal(resp.body, &doc); err == nil {
		if doc.Detail != "" {
			detail = doc.Detail
		} else if doc.Message != "" {
			detail = doc.Message
		}
	}
	return errors.FromHubStatus(resp.statusCode, detail)
}
