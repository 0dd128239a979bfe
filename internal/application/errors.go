package application

import "errors"

var (
	// ErrNotFound is returned by stores when no record exists.
	ErrNotFound = errors.New("not found")
	// ErrConfig means the API credential is missing or unreadable.
	ErrConfig = errors.New("credential not configured")
	// ErrFetch means the upstream call failed after retries were exhausted.
	ErrFetch = errors.New("upstream fetch failed")
	// ErrParse means the upstream returned a payload that could not be decoded.
	ErrParse = errors.New("malformed upstream payload")
	// ErrUnavailable means no source could serve data: cache empty, fetch
	// failed and no persisted fallback exists. The only caller-visible failure.
	ErrUnavailable = errors.New("rates unavailable")
)
