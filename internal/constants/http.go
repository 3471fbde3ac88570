package constants

import "time"

// AuthorizationHeader is the HTTP header carrying the hub API token.
const AuthorizationHeader = "Authorization"

// TokenAuthPrefix is the scheme prefix the hub expects on the
// Authorization header.
const TokenAuthPrefix = "token "

// ContentTypeHeader is the HTTP Content-Type header name.
const ContentTypeHeader = "Content-Type"

// HTTPStatusBadRequest is the HTTP status code for bad requests (400)
const HTTPStatusBadRequest = 400

// HubRequestTimeout is the per-request timeout for hub API calls.
const HubRequestTimeout = 60 * time.Second

// ServerReadTimeout is the HTTP server read timeout
const ServerReadTimeout = 15 * time.Second

// ServerWriteTimeout is the HTTP server write timeout
const ServerWriteTimeout = 15 * time.Second

// ServerIdleTimeout is the HTTP server idle timeout
const ServerIdleTimeout = 60 * time.Second

// ServerShutdownTimeout is the timeout for graceful server shutdown
const ServerShutdownTimeout = 5 * time.Second
