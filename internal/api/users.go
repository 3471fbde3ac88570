package api

import "time"

// User is the hub's user model, including the server map when the
// request asks for stopped servers too.
type User struct {
	Name         string            `json:"name"`
	Admin        bool              `json:"admin"`
	Kind         string            `json:"kind,omitempty"`
	Groups       []string          `json:"groups,omitempty"`
	Pending      string            `json:"pending,omitempty"`
	LastActivity *time.Time        `json:"last_activity,omitempty"`
	Servers      map[string]Server `json:"servers,omitempty"`
	Scopes       []string          `json:"scopes,omitempty"`
}

// Group is one hub group.
type Group struct {
	Name  string   `json:"name"`
	Users []string `json:"users,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Service is one hub-managed service registration.
type Service struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	Admin   bool   `json:"admin"`
	Command []string `json:"command,omitempty"`
}

// HubInfo is the version document served at the API root. It feeds the
// sharing feature detection.
type HubInfo struct {
	Version string `json:"version"`
}
