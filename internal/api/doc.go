// Package api provides the HTTP transport for the mail-admin console API.
// It handles request/response serialization, error parsing, public-key
// envelope extraction and optional retry with exponential backoff.
//
// # Client Creation
//
// [New] takes functional options. The base URL defaults to
// [DefaultBaseURL]; every request carries a fresh X-Request-ID header.
//
// # Endpoints
//
//   - [Client.GetPublicKey]: GET /api/auth/public-key, unauthenticated.
//   - [Client.Login]: POST /api/auth/login with a signed submission.
//   - [Client.ChangePassword]: PUT /api/auth/password, bearer token required.
//   - [Client.CurrentUser]: GET /api/auth/me, bearer token required.
//
// # Retry Behavior
//
// Retries are off by default ([DefaultMaxRetries] is zero) so a failed key
// fetch surfaces immediately. When enabled with [WithRetries], idempotent
// requests are retried on transport errors and these status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500, 502, 503, 504
//
// POST requests are never replayed.
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the server "message" field;
// transport failures become [*NetworkError]. [Client.GetPublicKey] reports
// both as a fetch-kind [apierrors.Error] whose message is the server message
// when one was sent.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use.
package api
