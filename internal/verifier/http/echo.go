package httpverifier

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
)

const maxPayloadSize = 2048

// An IP echo answers with {"ip": "..."} (ipify) or {"origin": "..."}
// (httpbin). Anything else means the proxy rewrote or replaced the body.
var expectedFields = map[string]struct{}{
	"ip":     {},
	"origin": {},
}

func checkEcho(body []byte) error {
	if len(body) > maxPayloadSize {
		return fmt.Errorf("%w: payload larger than %d bytes", ErrContentMismatch, maxPayloadSize)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrContentMismatch, err)
	}

	for name := range fields {
		if _, ok := expectedFields[name]; !ok {
			return fmt.Errorf("%w: unexpected field %q", ErrContentMismatch, name)
		}
	}

	raw, ok := fields["ip"]
	if !ok {
		raw, ok = fields["origin"]
	}
	if !ok {
		return fmt.Errorf("%w: no ip in response", ErrContentMismatch)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%w: ip is not a string", ErrContentMismatch)
	}

	// httpbin reports "client, proxy" when X-Forwarded-For is set.
	first, _, _ := strings.Cut(value, ",")
	if _, err := netip.ParseAddr(strings.TrimSpace(first)); err != nil {
		return fmt.Errorf("%w: invalid ip %q", ErrContentMismatch, value)
	}
	return nil
}
