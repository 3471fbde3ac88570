package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"apphub/internal/api"
	"apphub/internal/command"
	"apphub/internal/errors"
)

// GetUser fetches one user's full document, stopped servers included.
func (c *Client) GetUser(ctx context.Context, username string) (*api.User, error) {
	var user api.User
	err := c.withScopedUserToken(ctx, func(ctx context.Context) error {
		_, err := c.doJSON(ctx, request{
			method: "GET",
			path:   fmt.Sprintf("/users/%s", username),
			query:  url.Values{"include_stopped_servers": []string{"true"}},
		}, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers lists every hub user with their servers.
func (c *Client) GetUsers(ctx context.Context) ([]api.User, error) {
	var users []api.User
	_, err := c.doJSON(ctx, request{
		method: "GET",
		path:   "/users",
		query:  url.Values{"include_stopped_servers": []string{"true"}},
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetServers returns the user's full server map keyed by server name.
func (c *Client) GetServers(ctx context.Context, username string) (map[string]api.Server, error) {
	user, err := c.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Servers == nil {
		return map[string]api.Server{}, nil
	}
	return user.Servers, nil
}

// GetServer returns the user's server with the exact given name, or a
// NOT_FOUND error.
func (c *Client) GetServer(ctx context.Context, username, servername string) (*api.Server, error) {
	servers, err := c.GetServers(ctx, username)
	if err != nil {
		return nil, err
	}
	for name, server := range servers {
		if name == servername {
			if server.Name == "" {
				server.Name = name
			}
			return &server, nil
		}
	}
	return nil, errors.ErrNotFound(fmt.Sprintf("server %q not found", servername), nil)
}

// CreateServer creates a new server for the user. The desired name is
// normalized and suffixed with a random fragment, so repeated creations
// with the same desired name never collide. Returns the hub status code
// and the final server name.
func (c *Client) CreateServer(ctx context.Context, username, servername string, spec api.AppSpec) (int, string, error) {
	c.logger.Info("creating new server", "username", username, "servername", servername)
	final := NormalizeServerName(servername) + "-" + randomSuffix()
	return c.createNamed(ctx, username, final, spec)
}

// EditServer replaces an existing server's definition: the server is
// looked up by exact name, deleted, then recreated under the same name
// with the new spec. Editing never patches in place.
func (c *Client) EditServer(ctx context.Context, username, servername string, spec api.AppSpec) (int, string, error) {
	c.logger.Info("editing server", "username", username, "servername", servername)

	server, err := c.GetServer(ctx, username, servername)
	if err != nil {
		return 0, "", err
	}

	c.logger.Info("stopping the server before recreation", "servername", servername)
	if _, err := c.DeleteServer(ctx, username, server.Name, true); err != nil {
		return 0, "", err
	}

	return c.createNamed(ctx, username, servername, spec)
}

// createNamed creates a server under an exact name and triggers share
// reconciliation for shareable frameworks.
func (c *Client) createNamed(ctx context.Context, username, servername string, spec api.AppSpec) (int, string, error) {
	payload, err := creationPayload(servername, spec)
	if err != nil {
		return 0, "", err
	}

	var status int
	err = c.withScopedUserToken(ctx, func(ctx context.Context) error {
		var opErr error
		status, opErr = c.doJSON(ctx, request{
			method: "POST",
			path:   fmt.Sprintf("/users/%s/servers/%s", username, servername),
			body:   payload,
		}, nil)
		return opErr
	})
	if err != nil {
		return status, "", err
	}

	if spec.Framework != string(command.FrameworkJupyterLab) {
		if _, err := c.ReconcileShares(ctx, username, servername, spec.ShareWith); err != nil {
			return status, "", err
		}
	}

	return status, servername, nil
}

// DeleteServer stops a server (remove=false) or permanently deletes its
// registration (remove=true). The hub treats these as distinct calls.
func (c *Client) DeleteServer(ctx context.Context, username, servername string, remove bool) (int, error) {
	var status int
	err := c.withScopedUserToken(ctx, func(ctx context.Context) error {
		var opErr error
		status, opErr = c.doJSON(ctx, request{
			method: "DELETE",
			path:   fmt.Sprintf("/users/%s/servers/%s", username, servername),
			query:  url.Values{"remove": []string{fmt.Sprintf("%t", remove)}},
		}, nil)
		return opErr
	})
	return status, err
}

// StartServer starts a server. An empty name starts the user's default
// server with empty options. A named server is first looked up among the
// caller's own servers; failing that, every user's server map is
// searched so a server shared with the caller can be started under its
// true owner.
func (c *Client) StartServer(ctx context.Context, username, servername string) (int, string, error) {
	if servername == "" {
		c.logger.Info("starting default server", "username", username)
		status, err := c.startWithOptions(ctx, username, "", api.AppSpec{})
		return status, "", err
	}

	server, err := c.GetServer(ctx, username, servername)
	if err == nil {
		status, startErr := c.startWithOptions(ctx, username, servername, specFromServer(server))
		return status, servername, startErr
	}
	if errors.GetErrorCode(err) != errors.ErrCodeNotFound {
		return 0, "", err
	}

	// Not one of the caller's own servers; it may have been shared with
	// them. Find it under its true owner.
	users, err := c.GetUsers(ctx)
	if err != nil {
		return 0, "", err
	}
	for _, user := range users {
		server, ok := user.Servers[servername]
		if !ok {
			continue
		}
		c.logger.Info("starting shared server under its owner",
			"owner", user.Name, "servername", servername, "requestedBy", username)
		status, startErr := c.startWithOptions(ctx, user.Name, servername, specFromServer(&server))
		return status, servername, startErr
	}

	return 0, "", errors.ErrNotFound(fmt.Sprintf("server %q not found", servername), nil)
}

func (c *Client) startWithOptions(ctx context.Context, username, servername string, spec api.AppSpec) (int, error) {
	payload, err := creationPayload(servername, spec)
	if err != nil {
		return 0, err
	}

	var status int
	err = c.withScopedUserToken(ctx, func(ctx context.Context) error {
		var opErr error
		status, opErr = c.doJSON(ctx, request{
			method: "POST",
			path:   fmt.Sprintf("/users/%s/servers/%s", username, servername),
			body:   payload,
		}, nil)
		return opErr
	})
	return status, err
}

func specFromServer(server *api.Server) api.AppSpec {
	if server.UserOptions == nil {
		return api.AppSpec{}
	}
	return *server.UserOptions
}

// creationPayload flattens the app spec next to the server name, the
// shape the hub expects for server creation.
func creationPayload(servername string, spec api.AppSpec) (map[string]any, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal app spec: %w", err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to flatten app spec: %w", err)
	}
	payload["name"] = servername
	return payload, nil
}
