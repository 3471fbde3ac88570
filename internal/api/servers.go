package api

import (
	"encoding/json"
	"time"
)

// Server is the hub's observed state for one named server.
// https://jupyterhub.readthedocs.io/en/stable/reference/rest-api.html
type Server struct {
	Name         string     `json:"name"`
	Ready        bool       `json:"ready"`
	Stopped      bool       `json:"stopped"`
	Pending      string     `json:"pending,omitempty"`
	URL          string     `json:"url"`
	ProgressURL  string     `json:"progress_url,omitempty"`
	Started      *time.Time `json:"started,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	// UserOptions echoes the AppSpec the server was created with.
	UserOptions *AppSpec `json:"user_options,omitempty"`
	// State is spawner-internal and opaque to this service.
	State json.RawMessage `json:"state,omitempty"`
}

// AppListing is one row of the service's app listing: the subset of a
// server's state that identifies it as a managed app.
type AppListing struct {
	Username    string `json:"username"`
	ServerName  string `json:"servername"`
	DisplayName string `json:"display_name"`
	Framework   string `json:"framework"`
	Ready       bool   `json:"ready"`
	Stopped     bool   `json:"stopped"`
	Public      bool   `json:"public"`
	URL         string `json:"url,omitempty"`
}

// ServerCreationRequest is the POST body for server creation. The hub
// expects the options payload flattened next to the name, so it is
// marshaled by hand in the client.
type ServerCreationRequest struct {
	Name    string  `json:"name"`
	AppSpec AppSpec `json:"user_options"`
}
