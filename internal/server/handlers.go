package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"apphub/internal/api"
	"apphub/internal/constants"
	apperrors "apphub/internal/errors"
)

// handleHealth returns a simple health check response.
func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleStatus reports the service's own status plus the hub version
// when the hub is reachable. Hub unreachability degrades the response,
// it does not fail it: the endpoint's job is to signal that this
// service is up.
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) {
	response := api.StatusResponse{
		Status:  "ok",
		Version: *constants.GetVersion(),
		Uptime:  time.Since(r.startedAt).Round(time.Second).String(),
	}

	if info, err := r.hub.GetInfo(req.Context()); err != nil {
		r.getLoggerFromContext(req.Context()).Warn("hub unreachable during status check", "error", err)
	} else {
		response.HubVersion = info.Version
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// handleListApps lists every managed app across all users. Plain
// notebook servers are skipped; only servers created through this
// service carry the app marker in their options.
func (r *Router) handleListApps(w http.ResponseWriter, req *http.Request) {
	users, err := r.hub.GetUsers(req.Context())
	if err != nil {
		r.handleAndLogError(w, req, err, "list apps")
		return
	}

	apps := []api.AppListing{}
	for _, user := range users {
		for name, server := range user.Servers {
			if server.UserOptions == nil || !server.UserOptions.JHubApp {
				continue
			}
			apps = append(apps, api.AppListing{
				Username:    user.Name,
				ServerName:  name,
				DisplayName: server.UserOptions.DisplayName,
				Framework:   server.UserOptions.Framework,
				Ready:       server.Ready,
				Stopped:     server.Stopped,
				Public:      server.UserOptions.Public,
				URL:         server.URL,
			})
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Username != apps[j].Username {
			return apps[i].Username < apps[j].Username
		}
		return apps[i].ServerName < apps[j].ServerName
	})

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(apps)
}

// handleAndLogError logs an error and writes a standardized error
// response with status, code and details extracted from the error.
func (r *Router) handleAndLogError(w http.ResponseWriter, req *http.Request, err error, operationName string) {
	logger := r.getLoggerFromContext(req.Context())
	statusCode := apperrors.GetStatusCode(err)
	errorCode := apperrors.GetErrorCode(err)

	logger.Error("operation failed",
		"operation", operationName,
		"error", err,
		"status_code", statusCode,
		"error_code", errorCode,
	)

	writeErrorResponse(w, statusCode, api.ErrorResponse{
		Error:   "failed to " + operationName,
		Code:    errorCode,
		Details: apperrors.GetErrorDetails(err),
	})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, body api.ErrorResponse) {
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
