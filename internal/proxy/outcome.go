package proxy

import "time"

// ErrorKind classifies why a sub-probe failed. Kinds are observational only;
// none of them fails the run.
type ErrorKind string

const (
	KindTimeout              ErrorKind = "timeout"
	KindConnectionRefused    ErrorKind = "connection_refused"
	KindTLS                  ErrorKind = "tls_failure"
	KindProtocolMismatch     ErrorKind = "protocol_mismatch"
	KindContentMismatch      ErrorKind = "content_mismatch"
	KindNetwork              ErrorKind = "network"
	KindGlobalBudgetExceeded ErrorKind = "global_budget_exceeded"
)

// Outcome is the result of probing one candidate once.
type Outcome struct {
	Candidate Candidate
	Succeeded ProtocolSet
	Attempted ProtocolSet
	Latencies map[Protocol]time.Duration
	Errors    map[Protocol]ErrorKind
}

func NewOutcome(c Candidate) Outcome {
	return Outcome{
		Candidate: c,
		Latencies: make(map[Protocol]time.Duration),
		Errors:    make(map[Protocol]ErrorKind),
	}
}

func (o *Outcome) RecordSuccess(p Protocol, latency time.Duration) {
	o.Attempted = o.Attempted.With(p)
	o.Succeeded = o.Succeeded.With(p)
	o.Latencies[p] = latency
	delete(o.Errors, p)
}

func (o *Outcome) RecordFailure(p Protocol, kind ErrorKind) {
	o.Attempted = o.Attempted.With(p)
	o.Errors[p] = kind
}

// Latency is the fastest successful sub-probe, zero when nothing succeeded.
func (o Outcome) Latency() time.Duration {
	var best time.Duration
	for _, p := range o.Succeeded.Protocols() {
		if l := o.Latencies[p]; best == 0 || l < best {
			best = l
		}
	}
	return best
}

// ErrorKind reports the first failure in protocol order.
func (o Outcome) ErrorKind() (ErrorKind, bool) {
	for _, p := range Protocols {
		if k, ok := o.Errors[p]; ok {
			return k, true
		}
	}
	return "", false
}

func (o Outcome) Cancelled() bool {
	for _, k := range o.Errors {
		if k == KindGlobalBudgetExceeded {
			return true
		}
	}
	return false
}
