package domain

import "errors"

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrMalformedValue  = errors.New("malformed persisted value")
	ErrFetchFailed     = errors.New("fetch failed")
	ErrNotSignedIn     = errors.New("not signed in")
	ErrProfileNotFound = errors.New("profile not found")
)
