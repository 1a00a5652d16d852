package proxy

import (
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Line is one raw source line plus the protocol its source declares.
type Line struct {
	Text string
	Hint Protocol
}

var spacedColon = regexp.MustCompile(`\s*:\s*`)

// ParseLine turns "host:port" or "scheme://host:port" into a Candidate. The
// scheme, when present, overrides hint. Every rejection wraps
// ErrMalformedCandidate.
func ParseLine(line string, hint Protocol) (Candidate, error) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return Candidate{}, fmt.Errorf("%w: empty or comment", ErrMalformedCandidate)
	}

	declared := Unknown
	if p, ok := ParseProtocol(string(hint)); ok {
		declared = p
	}

	if i := strings.Index(s, "://"); i >= 0 {
		p, ok := ParseProtocol(s[:i])
		if !ok || p == Unknown {
			return Candidate{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedCandidate, s[:i])
		}
		declared = p
		s = s[i+3:]
	}

	s = spacedColon.ReplaceAllString(s, ":")
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	if j := strings.IndexAny(s, "/?#"); j >= 0 {
		s = s[:j]
	}
	if strings.Contains(s, "@") {
		return Candidate{}, fmt.Errorf("%w: credentials not supported", ErrMalformedCandidate)
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrMalformedCandidate, err)
	}

	port, err := parsePort(portStr)
	if err != nil {
		return Candidate{}, err
	}

	if !validHost(host) {
		return Candidate{}, fmt.Errorf("%w: invalid host %q", ErrMalformedCandidate, host)
	}

	return NewCandidate(host, port, declared), nil
}

func parsePort(s string) (int, error) {
	if s == "" || len(s) > 5 || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%w: invalid port %q", ErrMalformedCandidate, s)
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: port %q out of range", ErrMalformedCandidate, s)
	}
	return port, nil
}

func validHost(host string) bool {
	if host == "" {
		return false
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Zone() == ""
	}
	if len(host) > 253 {
		return false
	}

	labels := strings.Split(host, ".")
	numeric := true
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= '0' && r <= '9':
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
				numeric = false
			default:
				return false
			}
		}
	}
	// all-numeric dotted names are broken IPv4 literals, not hostnames
	return !numeric
}

// NormalizeLines parses lines in order, drops malformed ones and keeps the
// first occurrence of every (host, port).
func NormalizeLines(lines []Line) []Candidate {
	seen := make(map[string]struct{}, len(lines))
	out := make([]Candidate, 0, len(lines))

	for _, l := range lines {
		c, err := ParseLine(l.Text, l.Hint)
		if err != nil {
			continue
		}
		key := c.Address()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	return out
}

// Normalize is NormalizeLines for lines without a source protocol hint.
func Normalize(lines []string) []Candidate {
	return NormalizeLines(lo.Map(lines, func(s string, _ int) Line {
		return Line{Text: s, Hint: Unknown}
	}))
}

// CapPerProtocol keeps at most n candidates per declared protocol, preserving
// order. n <= 0 disables the cap.
func CapPerProtocol(candidates []Candidate, n int) []Candidate {
	if n <= 0 {
		return candidates
	}
	counts := make(map[Protocol]int)
	return lo.Filter(candidates, func(c Candidate, _ int) bool {
		counts[c.Declared]++
		return counts[c.Declared] <= n
	})
}
