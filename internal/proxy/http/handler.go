package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/logs"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Handler struct {
	getProxies *proxy.GetProxiesUseCase
	getRandom  *proxy.GetRandomProxyUseCase
	getSummary *proxy.GetSummaryUseCase
	logger     logs.Logger
}

func NewHandler(reader proxy.Reader, logger logs.Logger) *Handler {
	return &Handler{
		getProxies: proxy.NewGetProxiesUseCase(reader, logger),
		getRandom:  proxy.NewGetRandomProxyUseCase(reader, logger),
		getSummary: proxy.NewGetSummaryUseCase(reader),
		logger:     logger,
	}
}

// ProxyResponse is the JSON representation of a working proxy
type ProxyResponse struct {
	Address   string   `json:"address"`
	Host      string   `json:"host"`
	Port      int      `json:"port"`
	Protocols []string `json:"protocols"`
	Latency   int64    `json:"latency_ms"`
}

type PaginatedResponse struct {
	Data       []ProxyResponse `json:"data"`
	NextCursor int             `json:"next_cursor"`
	Limit      int             `json:"limit"`
	TotalCount int             `json:"total_count"`
}

type SummaryResponse struct {
	Summary       proxy.Summary `json:"summary"`
	Parsed        int           `json:"parsed"`
	HTTPSFallback bool          `json:"https_fallback"`
	UpdatedUTC    time.Time     `json:"updated_utc"`
}

func toResponse(e proxy.Entry) ProxyResponse {
	return ProxyResponse{
		Address:   e.Address(),
		Host:      e.Candidate.Host,
		Port:      e.Candidate.Port,
		Protocols: e.Protocols.Strings(),
		Latency:   e.Latency.Milliseconds(),
	}
}

// Health returns service health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetProxies returns one page of a bucket.
// Query params: protocol (bucket, default all), cursor, limit
func (h *Handler) GetProxies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cursor, err := intParam(q.Get("cursor"), 0)
	if err != nil || cursor < 0 {
		http.Error(w, "invalid cursor", http.StatusBadRequest)
		return
	}
	limit, err := intParam(q.Get("limit"), defaultLimit)
	if err != nil || limit <= 0 {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	limit = min(limit, maxLimit)

	out, err := h.getProxies.Execute(r.Context(), proxy.GetProxiesInput{
		Bucket: q.Get("protocol"),
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := make([]ProxyResponse, len(out.Proxies))
	for i, e := range out.Proxies {
		data[i] = toResponse(e)
	}

	writeJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		NextCursor: out.NextCursor,
		Limit:      limit,
		TotalCount: out.Total,
	})
}

// GetRandomProxy returns a random working proxy from a bucket
// Query params: protocol
func (h *Handler) GetRandomProxy(w http.ResponseWriter, r *http.Request) {
	e, err := h.getRandom.Execute(r.Context(), r.URL.Query().Get("protocol"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(e))
}

// GetSummary returns the counts of the last refresh
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	info, err := h.getSummary.Execute(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		Summary:       info.Summary,
		Parsed:        info.Parsed,
		HTTPSFallback: info.HTTPSFallback,
		UpdatedUTC:    info.GeneratedAt,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, proxy.ErrUnknownBucket):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, proxy.ErrNoProxiesAvailable), errors.Is(err, proxy.ErrNoSnapshot):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger := LoggerFromContext(r.Context())
		if logger == nil {
			logger = h.logger
		}
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
