package hub

import (
	"context"
	"fmt"

	"apphub/internal/api"
	"apphub/internal/constants"
	"apphub/internal/errors"
)

// withScopedUserToken mints a short-lived token for the client's subject
// username, pushes it onto the token stack, runs op, then revokes the
// token and pops the stack. The cleanup runs on both normal return and
// error; a failed revocation is logged, never returned, so it cannot
// mask op's own result.
func (c *Client) withScopedUserToken(ctx context.Context, op func(context.Context) error) error {
	if c.username == "" {
		return op(ctx)
	}

	token, err := c.createUserToken(ctx, c.username)
	if err != nil {
		return fmt.Errorf("failed to create scoped token for user %q: %w", c.username, err)
	}

	c.pushToken(token.Token)
	defer func() {
		c.popToken()
		// Revocation still runs when the surrounding operation was
		// canceled.
		revokeCtx := context.WithoutCancel(ctx)
		if revokeErr := c.revokeUserToken(revokeCtx, c.username, token.ID); revokeErr != nil {
			lifecycle := errors.ErrTokenLifecycle(
				fmt.Sprintf("failed to revoke scoped token %s for user %q", token.ID, c.username), revokeErr)
			c.logger.Error("scoped token revocation failed",
				"error", lifecycle,
				"username", c.username,
				"tokenID", token.ID)
		}
	}()

	return op(ctx)
}

func (c *Client) createUserToken(ctx context.Context, username string) (*api.Token, error) {
	var token api.Token
	_, err := c.doJSON(ctx, request{
		method: "POST",
		path:   fmt.Sprintf("/users/%s/tokens", username),
		body: api.TokenRequest{
			ExpiresIn: int(constants.ScopedTokenTTL.Seconds()),
			Note:      "apphub scoped token",
		},
	}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *Client) revokeUserToken(ctx context.Context, username, tokenID string) error {
	_, err := c.doJSON(ctx, request{
		method: "DELETE",
		path:   fmt.Sprintf("/users/%s/tokens/%s", username, tokenID),
	}, nil)
	return err
}
