package api

import "github.com/mailadmin/client-go/internal/apierrors"

// Re-exported so callers of this package need not import apierrors.
type (
	APIError     = apierrors.APIError
	NetworkError = apierrors.NetworkError
)

var (
	ErrUnauthorized = apierrors.ErrUnauthorized
	ErrRateLimited  = apierrors.ErrRateLimited
	ErrLoginFailed  = apierrors.ErrLoginFailed
)

// FetchFailedMessage is reported when the key endpoint fails without
// sending a message of its own.
const FetchFailedMessage = "failed to fetch RSA public key"
