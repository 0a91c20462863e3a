package testutil

import (
	"net/http"

	"votesmart/pkg/requestcontext"
)

// WithAccountID adds a caller account identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithAccountID(req *http.Request, accountID string) *http.Request {
	return req.WithContext(requestcontext.WithAccountID(req.Context(), accountID))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
