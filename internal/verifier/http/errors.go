package httpverifier

import "errors"

var (
	ErrContentMismatch  = errors.New("echo response failed integrity check")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)
