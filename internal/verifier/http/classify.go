package httpverifier

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

// classify maps a failed sub-probe to an error kind. parent is the context
// handed to Verify; when it is done the failure belongs to the run budget,
// not to the candidate.
func classify(parent context.Context, err error) proxy.ErrorKind {
	if parent.Err() != nil {
		return proxy.KindGlobalBudgetExceeded
	}

	switch {
	case errors.Is(err, ErrContentMismatch):
		return proxy.KindContentMismatch
	case errors.Is(err, ErrUnexpectedStatus):
		return proxy.KindProtocolMismatch
	case errors.Is(err, syscall.ECONNREFUSED):
		return proxy.KindConnectionRefused
	case isTimeout(err):
		return proxy.KindTimeout
	case isTLS(err):
		return proxy.KindTLS
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return proxy.KindConnectionRefused
	case strings.Contains(msg, "socks"),
		strings.Contains(msg, "malformed http"),
		strings.Contains(msg, "not granted"):
		return proxy.KindProtocolMismatch
	}
	return proxy.KindNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTLS(err error) bool {
	var (
		recordErr    tls.RecordHeaderError
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &recordErr),
		errors.As(err, &verifyErr),
		errors.As(err, &authorityErr),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidErr):
		return true
	}
	return strings.Contains(err.Error(), "tls: ")
}
