package strava

import "fmt"

// AuthError means no usable credential is available: the token could not be
// obtained or refreshed, or the API rejected it even after one refresh.
// It is not recoverable locally and must surface to the caller.
type AuthError struct {
	Status int // HTTP status, 0 when the failure happened before a request
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication rejected with status %d", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError means the transport failed or the API returned a non-success
// status. Callers with a usable cache recover by falling back to it.
type NetworkError struct {
	Status int // HTTP status, 0 for transport-level failures
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("activities request failed: %v", e.Err)
	}
	return fmt.Sprintf("activities request failed with status %d", e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError means the response body did not carry a usable
// activities payload. It is never partially applied to the cache.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return "invalid activities response: " + e.Reason
}
