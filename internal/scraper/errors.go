package scraper

import "errors"

var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrInvalidSourcesFile = errors.New("invalid sources file")
)
