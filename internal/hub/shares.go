package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"apphub/internal/api"
	"apphub/internal/constants"
	"apphub/internal/errors"
)

// ShareServer grants one user or group access to the server.
func (c *Client) ShareServer(ctx context.Context, username, servername string, grant api.ShareRequest) (json.RawMessage, error) {
	resp, err := c.do(ctx, request{
		method: "POST",
		path:   fmt.Sprintf("/shares/%s/%s", username, servername),
		body:   grant,
	})
	if err != nil {
		return nil, err
	}
	if resp.statusCode >= constants.HTTPStatusBadRequest {
		return nil, hubError(resp)
	}
	return json.RawMessage(resp.body), nil
}

// revokeAllShares removes every existing grant on the server in one
// call.
func (c *Client) revokeAllShares(ctx context.Context, username, servername string) error {
	_, err := c.doJSON(ctx, request{
		method: "DELETE",
		path:   fmt.Sprintf("/shares/%s/%s", username, servername),
	}, nil)
	return err
}

// ReconcileShares drives the server's grants to exactly the given set:
// all existing grants are revoked, then the desired users and groups are
// granted concurrently. Individual grant failures land inline in the
// result keyed by grantee; only the revocation step fails the whole
// operation. A nil or empty permission set is a no-op that leaves
// existing grants alone.
func (c *Client) ReconcileShares(ctx context.Context, username, servername string, share *api.SharePermissions) (api.ShareResult, error) {
	if share.Empty() {
		return api.ShareResult{}, nil
	}

	c.logger.Info("reconciling server shares",
		"username", username,
		"servername", servername,
		"users", len(share.Users),
		"groups", len(share.Groups))

	if err := c.revokeAllShares(ctx, username, servername); err != nil {
		return nil, fmt.Errorf("failed to revoke existing shares for %s/%s: %w", username, servername, err)
	}

	type grant struct {
		key string
		req api.ShareRequest
	}
	grants := make([]grant, 0, len(share.Users)+len(share.Groups))
	for _, user := range share.Users {
		grants = append(grants, grant{key: user, req: api.ShareRequest{User: user}})
	}
	for _, group := range share.Groups {
		grants = append(grants, grant{key: group, req: api.ShareRequest{Group: group}})
	}

	var mu sync.Mutex
	result := make(api.ShareResult, len(grants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.ShareFanoutWidth)
	for _, gr := range grants {
		gr := gr
		g.Go(func() error {
			raw, err := c.ShareServer(gctx, username, servername, gr.req)
			if err != nil {
				// Record the failure against the grantee so one bad
				// name cannot sink the rest of the fan-out.
				doc := api.ErrorDocument{
					Status: errors.GetStatusCode(err),
					Detail: errors.GetErrorMessage(err),
				}
				raw, _ = json.Marshal(doc)
				c.logger.Warn("share grant failed",
					"servername", servername,
					"grantee", gr.key,
					"error", err)
			}
			mu.Lock()
			result[gr.key] = raw
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

// GetSharedServers lists the servers other users have shared with this
// client's subject user. Hubs too old to support sharing yield an empty
// list.
func (c *Client) GetSharedServers(ctx context.Context, username string) ([]api.SharedServer, error) {
	supported, err := c.sharingSupported(ctx)
	if err != nil {
		return nil, err
	}
	if !supported {
		return []api.SharedServer{}, nil
	}

	var list api.SharedServerList
	_, err = c.doJSON(ctx, request{
		method: "GET",
		path:   fmt.Sprintf("/users/%s/shared", username),
	}, &list)
	if err != nil {
		return nil, err
	}

	shared := make([]api.SharedServer, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Server.User.Name == username {
			continue
		}
		shared = append(shared, item)
	}
	return shared, nil
}

// GetInfo fetches the hub's version document from the API root.
func (c *Client) GetInfo(ctx context.Context) (*api.HubInfo, error) {
	var info api.HubInfo
	if _, err := c.doJSON(ctx, request{method: "GET", path: "/"}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// sharingSupported probes the hub version once and caches the verdict
// for the lifetime of the client. Sharing arrived in major version 5.
func (c *Client) sharingSupported(ctx context.Context) (bool, error) {
	if c.shareSupport != nil {
		return *c.shareSupport, nil
	}

	info, err := c.GetInfo(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to probe hub version: %w", err)
	}

	supported := false
	if major, _, found := strings.Cut(info.Version, "."); found || major != "" {
		if n, err := strconv.Atoi(major); err == nil && n >= 5 {
			supported = true
		}
	}

	c.logger.Debug("sharing feature probe", "version", info.Version, "supported", supported)
	c.shareSupport = &supported
	return supported, nil
}

// GetGroups lists the hub's groups.
func (c *Client) GetGroups(ctx context.Context) ([]api.Group, error) {
	var groups []api.Group
	if _, err := c.doJSON(ctx, request{method: "GET", path: "/groups"}, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetServices lists the hub's registered services.
func (c *Client) GetServices(ctx context.Context) ([]api.Service, error) {
	var services []api.Service
	if _, err := c.doJSON(ctx, request{method: "GET", path: "/services"}, &services); err != nil {
		return nil, err
	}
	return services, nil
}
