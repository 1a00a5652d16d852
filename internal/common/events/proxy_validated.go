package events

import "time"

// ProxyValidatedEvent is published once per working proxy after a refresh.
type ProxyValidatedEvent struct {
	Address     string    `json:"address"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Protocols   []string  `json:"protocols"`
	LatencyMS   int64     `json:"latency_ms"`
	ValidatedAt time.Time `json:"validated_at"`
}
