package api

// TokenRequest is the POST body for minting a scoped user token.
type TokenRequest struct {
	// ExpiresIn is the requested lifetime in seconds.
	ExpiresIn int    `json:"expires_in"`
	Note      string `json:"note,omitempty"`
}

// Token is the hub's response to a token creation. Only the creation
// response carries the token value itself.
type Token struct {
	ID    string `json:"id"`
	Token string `json:"token,omitempty"`
	User  string `json:"user,omitempty"`
	Note  string `json:"note,omitempty"`
}
