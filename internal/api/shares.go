package api

import "encoding/json"

// ShareRequest grants access to a server. Exactly one of User or Group
// is set per request; the hub rejects requests carrying both.
type ShareRequest struct {
	User  string `json:"user,omitempty"`
	Group string `json:"group,omitempty"`
}

// SharedServerRef identifies a server inside a share listing.
type SharedServerRef struct {
	Name string `json:"name"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
	URL string `json:"url,omitempty"`
}

// SharedServer is one entry of a user's incoming shares.
type SharedServer struct {
	Server SharedServerRef `json:"server"`
	Scopes []string        `json:"scopes,omitempty"`
	Kind   string          `json:"kind,omitempty"`
}

// SharedServerList is the paginated envelope of GET /users/{name}/shared.
type SharedServerList struct {
	Items []SharedServer `json:"items"`
}

// ShareResult maps a grantee name to the hub's response payload for that
// grant. Individual grant failures are recorded inline as error
// documents rather than failing the whole fan-out.
type ShareResult map[string]json.RawMessage

// ErrorDocument is the hub's error envelope, surfaced verbatim to
// callers.
type ErrorDocument struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// DetailOrMessage returns whichever of the two detail fields the hub
// populated.
func (e ErrorDocument) DetailOrMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
