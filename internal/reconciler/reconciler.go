// Package reconciler drives a declared set of startup apps to their
// desired state on the hub. Apps are grouped by owner; owners reconcile
// concurrently while each owner's apps run strictly in order.
package reconciler

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"apphub/internal/api"
	"apphub/internal/config"
	"apphub/internal/constants"
	"apphub/internal/errors"
	"apphub/internal/hub"
	"apphub/internal/logger"
)

// HubAPI is the slice of the hub client the reconciler needs.
type HubAPI interface {
	GetServers(ctx context.Context, username string) (map[string]api.Server, error)
	CreateServer(ctx context.Context, username, servername string, spec api.AppSpec) (int, string, error)
	DeleteServer(ctx context.Context, username, servername string, remove bool) (int, error)
}

// Reconciler replays the configured startup apps against the hub.
type Reconciler struct {
	cfg    *config.Config
	logger *slog.Logger

	// newClient builds one hub client per owner, so concurrent owners
	// never share scoped-token state.
	newClient func(username string) HubAPI

	httpClient        *http.Client
	pollInterval      time.Duration
	readinessInterval time.Duration
	readinessTimeout  time.Duration
}

// New creates a reconciler backed by real hub clients.
func New(cfg *config.Config, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		cfg:    cfg,
		logger: log,
		newClient: func(username string) HubAPI {
			return hub.NewForUser(cfg, log, username)
		},
		httpClient:        &http.Client{Timeout: constants.ReadinessPollInterval},
		pollInterval:      constants.ReconcilePollInterval,
		readinessInterval: constants.ReadinessPollInterval,
		readinessTimeout:  constants.ReadinessTimeout,
	}
}

// Run reconciles every startup app. It waits for the service's own
// status endpoint first, then fans out one worker per owner. All
// per-app failures are collected; one owner's failure never blocks
// another owner's progress.
func (r *Reconciler) Run(ctx context.Context, apps []api.StartupApp) error {
	if len(apps) == 0 {
		r.logger.Info("no startup apps configured, nothing to reconcile")
		return nil
	}

	for i := range apps {
		apps[i].NormalizedName = hub.NormalizeServerName(apps[i].ServerName)
	}

	r.waitUntilReady(ctx)

	owners, byOwner := groupByOwner(apps)
	r.logger.Info("reconciling startup apps", "apps", len(apps), "owners", len(owners))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, owner := range owners {
		owner := owner
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := r.newClient(owner)
			for _, app := range byOwner[owner] {
				if err := r.reconcileApp(ctx, client, app); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("app %q for user %q: %w", app.ServerName, owner, err))
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		if ctx.Err() != nil {
			r.logger.Warn("reconciliation canceled", "completedWithErrors", len(errs))
		}
		return stderrors.Join(errs...)
	}

	r.logger.Info("startup app reconciliation complete", "apps", len(apps))
	return nil
}

// groupByOwner splits the apps per owner, preserving first-seen owner
// order and each owner's declared app order.
func groupByOwner(apps []api.StartupApp) ([]string, map[string][]api.StartupApp) {
	var owners []string
	byOwner := make(map[string][]api.StartupApp)
	for _, app := range apps {
		if _, seen := byOwner[app.Username]; !seen {
			owners = append(owners, app.Username)
		}
		byOwner[app.Username] = append(byOwner[app.Username], app)
	}
	return owners, byOwner
}

// reconcileApp drives one app through delete, create and stop so the
// app ends up registered with fresh options but not running.
func (r *Reconciler) reconcileApp(ctx context.Context, client HubAPI, app api.StartupApp) error {
	log := logger.WithUser(r.logger, app.Username).With("servername", app.ServerName)

	servers, err := client.GetServers(ctx, app.Username)
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}

	if stale := matchNormalized(servers, app.NormalizedName); stale != "" {
		log.Info("deleting stale server before recreation", "stale", stale)
		if _, err := client.DeleteServer(ctx, app.Username, stale, true); err != nil {
			return fmt.Errorf("failed to delete stale server %q: %w", stale, err)
		}
		err := r.pollUntil(ctx, client, app.Username, func(servers map[string]api.Server) bool {
			return matchNormalized(servers, app.NormalizedName) == ""
		})
		if err != nil {
			return fmt.Errorf("stale server %q never went away: %w", stale, err)
		}
	}

	_, finalName, err := client.CreateServer(ctx, app.Username, app.ServerName, app.AppSpec)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	log.Info("server created", "finalName", finalName)

	err = r.pollUntil(ctx, client, app.Username, func(servers map[string]api.Server) bool {
		_, ok := servers[finalName]
		return ok
	})
	if err != nil {
		return fmt.Errorf("server %q never appeared: %w", finalName, err)
	}

	// Stop without removing: the app stays registered for its owner to
	// start on demand.
	if _, err := client.DeleteServer(ctx, app.Username, finalName, false); err != nil {
		return fmt.Errorf("failed to stop server %q: %w", finalName, err)
	}
	err = r.pollUntil(ctx, client, app.Username, func(servers map[string]api.Server) bool {
		server, ok := servers[finalName]
		return !ok || server.Stopped || (!server.Ready && server.Pending == "")
	})
	if err != nil {
		return fmt.Errorf("server %q never stopped: %w", finalName, err)
	}

	log.Info("app reconciled", "finalName", finalName)
	return nil
}

// matchNormalized finds the observed server belonging to a desired
// normalized name. Created servers carry a random suffix, so both the
// bare normalized name and any suffixed form of it match.
func matchNormalized(servers map[string]api.Server, normalized string) string {
	if normalized == "" {
		return ""
	}
	for name := range servers {
		if name == normalized || strings.HasPrefix(name, normalized+"-") {
			return name
		}
	}
	return ""
}

// pollUntil re-reads the owner's servers on the poll interval until the
// condition holds, the context ends, or the configured poll budget runs
// out (zero means unbounded).
func (r *Reconciler) pollUntil(ctx context.Context, client HubAPI, username string, cond func(map[string]api.Server) bool) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		servers, err := client.GetServers(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to poll servers: %w", err)
		}
		if cond(servers) {
			return nil
		}

		polls++
		if r.cfg.MaxReconcilePolls > 0 && polls >= r.cfg.MaxReconcilePolls {
			return errors.ErrTimeout(fmt.Sprintf("state not reached after %d polls", polls), nil)
		}
	}
}

// waitUntilReady blocks until the service's own status endpoint answers,
// so reconciliation does not race service startup. The gate is advisory:
// on timeout reconciliation proceeds anyway.
func (r *Reconciler) waitUntilReady(ctx context.Context) {
	statusURL := r.cfg.StatusURL()
	deadline := time.Now().Add(r.readinessTimeout)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			r.logger.Warn("invalid status URL, skipping readiness gate", "url", statusURL, "error", err)
			return
		}
		resp, err := r.httpClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				r.logger.Debug("service ready", "url", statusURL)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.readinessInterval):
		}
	}

	r.logger.Warn("service readiness not confirmed, reconciling anyway",
		"url", statusURL, "waited", r.readinessTimeout)
}
