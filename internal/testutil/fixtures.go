// Package testutil provides shared testing utilities and helpers.
package testutil

import (
	"context"
	"log/slog"
	"os"

	"apphub/internal/api"
	"apphub/internal/constants"
)

// UserBuilder provides a fluent interface for building test hub users.
type UserBuilder struct {
	user api.User
}

// NewUserBuilder creates a new UserBuilder with sensible defaults.
func NewUserBuilder(name string) *UserBuilder {
	return &UserBuilder{
		user: api.User{
			Name:    name,
			Servers: map[string]api.Server{},
		},
	}
}

// Admin marks the user as a hub admin.
func (b *UserBuilder) Admin() *UserBuilder {
	b.user.Admin = true
	return b
}

// WithGroups sets the user's group memberships.
func (b *UserBuilder) WithGroups(groups ...string) *UserBuilder {
	b.user.Groups = groups
	return b
}

// WithServer adds a running server to the user's server map.
func (b *UserBuilder) WithServer(name string, spec *api.AppSpec) *UserBuilder {
	b.user.Servers[name] = api.Server{
		Name:        name,
		Ready:       true,
		UserOptions: spec,
	}
	return b
}

// WithStoppedServer adds a stopped server to the user's server map.
func (b *UserBuilder) WithStoppedServer(name string, spec *api.AppSpec) *UserBuilder {
	b.user.Servers[name] = api.Server{
		Name:        name,
		Stopped:     true,
		UserOptions: spec,
	}
	return b
}

// Build returns the constructed User.
func (b *UserBuilder) Build() api.User {
	return b.user
}

// AppSpecBuilder provides a fluent interface for building app specs.
type AppSpecBuilder struct {
	spec api.AppSpec
}

// NewAppSpecBuilder creates a new AppSpecBuilder with sensible defaults.
func NewAppSpecBuilder(displayName string) *AppSpecBuilder {
	return &AppSpecBuilder{
		spec: api.AppSpec{
			JHubApp:     true,
			DisplayName: displayName,
			Framework:   "panel",
		},
	}
}

// WithFramework sets the app framework.
func (b *AppSpecBuilder) WithFramework(framework string) *AppSpecBuilder {
	b.spec.Framework = framework
	return b
}

// WithFilepath sets the app entry file.
func (b *AppSpecBuilder) WithFilepath(path string) *AppSpecBuilder {
	b.spec.Filepath = path
	return b
}

// SharedWith sets the app's desired grantees.
func (b *AppSpecBuilder) SharedWith(users, groups []string) *AppSpecBuilder {
	b.spec.ShareWith = &api.SharePermissions{Users: users, Groups: groups}
	return b
}

// Public makes the app publicly reachable.
func (b *AppSpecBuilder) Public() *AppSpecBuilder {
	b.spec.Public = true
	return b
}

// KeepAlive exempts the app from idle culling.
func (b *AppSpecBuilder) KeepAlive() *AppSpecBuilder {
	b.spec.KeepAlive = true
	return b
}

// Build returns the constructed AppSpec.
func (b *AppSpecBuilder) Build() api.AppSpec {
	return b.spec
}

// TestContext creates a test context with a reasonable timeout.
// Note: The cancel function is intentionally not returned since test contexts
// are expected to be short-lived and will be cleaned up when the test completes.
func TestContext() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), constants.TestContextTimeout)
	_ = cancel // Silence unused warning - context will timeout automatically
	return ctx
}

// TestLogger creates a logger suitable for testing (outputs to stderr).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

// SilentLogger creates a logger that discards all output.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.NewFile(0, os.DevNull), &slog.HandlerOptions{
		Level: slog.LevelError + 1, // Suppress all logs
	}))
}
