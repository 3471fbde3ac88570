package api

// StatusResponse is the body of the service status endpoint. The
// startup reconciler polls it before touching the hub.
type StatusResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	HubVersion string `json:"hub_version,omitempty"`
	Uptime     string `json:"uptime,omitempty"`
}

// ErrorResponse is the JSON error envelope written by the service's own
// HTTP handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
