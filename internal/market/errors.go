package market

import "errors"

var (
	// ErrRateLimited marks a rate-limit response from the exchange. The
	// control loop backs off longer on these than on generic failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrMissingCredentials is returned by private endpoints when the client
	// was built without an API key pair.
	ErrMissingCredentials = errors.New("missing api credentials")
)
