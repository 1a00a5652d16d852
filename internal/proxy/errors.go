package proxy

import "errors"

var (
	ErrMalformedCandidate = errors.New("malformed candidate")
	ErrDegradedRun        = errors.New("degraded run: no candidates parsed from any source")
	ErrNoProxiesAvailable = errors.New("no proxies available")
	ErrUnknownBucket      = errors.New("unknown bucket")
	ErrNoSnapshot         = errors.New("no snapshot stored")
)
