package proxy

import (
	"cmp"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

type Protocol string

const (
	HTTP    Protocol = "http"
	HTTPS   Protocol = "https"
	SOCKS4  Protocol = "socks4"
	SOCKS5  Protocol = "socks5"
	Unknown Protocol = "unknown"
)

// Protocols lists the concrete protocols in output order.
var Protocols = []Protocol{HTTP, HTTPS, SOCKS4, SOCKS5}

// ParseProtocol accepts scheme spellings seen in public lists. socks4a and
// socks5h are folded into their base protocol.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "http":
		return HTTP, true
	case "https":
		return HTTPS, true
	case "socks4", "socks4a":
		return SOCKS4, true
	case "socks5", "socks5h":
		return SOCKS5, true
	case "unknown", "mixed", "":
		return Unknown, true
	default:
		return Unknown, false
	}
}

func (p Protocol) bit() ProtocolSet {
	switch p {
	case HTTP:
		return 1 << 0
	case HTTPS:
		return 1 << 1
	case SOCKS4:
		return 1 << 2
	case SOCKS5:
		return 1 << 3
	default:
		return 0
	}
}

func (p Protocol) IsSOCKS() bool {
	return p == SOCKS4 || p == SOCKS5
}

// ProtocolSet is a set of concrete protocols. The zero value is empty.
type ProtocolSet uint8

func NewProtocolSet(ps ...Protocol) ProtocolSet {
	var s ProtocolSet
	for _, p := range ps {
		s = s.With(p)
	}
	return s
}

// AllProtocols is the set of every concrete protocol.
func AllProtocols() ProtocolSet {
	return NewProtocolSet(Protocols...)
}

// ParseProtocolSet reads a comma separated list such as "http,socks5".
func ParseProtocolSet(s string) (ProtocolSet, error) {
	var set ProtocolSet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, ok := ParseProtocol(part)
		if !ok || p == Unknown {
			return 0, fmt.Errorf("unknown protocol %q", part)
		}
		set = set.With(p)
	}
	return set, nil
}

func (s ProtocolSet) With(p Protocol) ProtocolSet {
	return s | p.bit()
}

func (s ProtocolSet) Has(p Protocol) bool {
	b := p.bit()
	return b != 0 && s&b == b
}

func (s ProtocolSet) Union(o ProtocolSet) ProtocolSet {
	return s | o
}

func (s ProtocolSet) IsEmpty() bool {
	return s == 0
}

func (s ProtocolSet) Protocols() []Protocol {
	out := make([]Protocol, 0, len(Protocols))
	for _, p := range Protocols {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s ProtocolSet) Strings() []string {
	ps := s.Protocols()
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func (s ProtocolSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// Candidate is one parsed endpoint. Identity is (Host, Port); Declared only
// steers which probes run.
type Candidate struct {
	Host     string
	Port     int
	Declared Protocol
}

func NewCandidate(host string, port int, declared Protocol) Candidate {
	if declared == "" {
		declared = Unknown
	}
	return Candidate{Host: host, Port: port, Declared: declared}
}

func (c Candidate) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the candidate addressed with the given scheme, e.g.
// socks5://1.2.3.4:1080.
func (c Candidate) URL(scheme Protocol) *url.URL {
	return &url.URL{
		Scheme: string(scheme),
		Host:   c.Address(),
	}
}

// Compare orders candidates by host (lexicographic), then port (numeric).
func Compare(a, b Candidate) int {
	if c := strings.Compare(a.Host, b.Host); c != 0 {
		return c
	}
	return cmp.Compare(a.Port, b.Port)
}
