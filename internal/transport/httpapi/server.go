// Package httpapi implements the external order submission and book/stats
// query contract (spec.md §6) over HTTP, routed with chi. It is a thin,
// opaque transport over internal/engine: admission semantics, matching,
// and event publication all live in the engine façade, never here.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const defaultDepth = 10

// Server wraps an *engine.Engine with an HTTP router.
type Server struct {
	engine *engine.Engine
	router chi.Router
}

// New builds an HTTP server fronting eng.
func New(eng *engine.Engine) *Server {
	s := &Server{engine: eng}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/orders", s.handleSubmit)
		r.Get("/books/{symbol}", s.handleBook)
		r.Get("/bbo/{symbol}", s.handleBBO)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var dto orderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, common.ReasonMalformedRequest, "malformed request body")
		return
	}

	req, verr := parseOrderRequest(dto)
	if verr != nil {
		writeError(w, http.StatusBadRequest, verr.Reason, verr.Error())
		return
	}
	req.Owner = r.Header.Get("X-Client-Id")

	// A rejection is still a well-formed submission response (status:
	// "rejected"), not an HTTP error: the engine's returned error is for
	// the process' own logs, not the wire.
	resp, _ := s.engine.Submit(req)
	writeJSON(w, http.StatusOK, toResponseDTO(resp))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	depth := defaultDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			depth = n
		}
	}

	bids, asks, sequence, ok := s.engine.Snapshot(symbol, depth)
	if !ok {
		writeError(w, http.StatusNotFound, common.ReasonUnknownSymbol, "unknown symbol")
		return
	}

	writeJSON(w, http.StatusOK, bookResponseDTO{
		Bids:      toLevelDTOs(bids),
		Asks:      toLevelDTOs(asks),
		Timestamp: time.Now().Unix(),
		Sequence:  sequence,
	})
}

func (s *Server) handleBBO(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	quote, ok := s.engine.BBO(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, common.ReasonUnknownSymbol, "unknown symbol")
		return
	}

	resp := bboResponseDTO{}
	if quote.Bid != nil {
		resp.Bid = &levelDTO{Price: quote.Bid.Price.String(), Quantity: quote.Bid.Quantity.String()}
	}
	if quote.Ask != nil {
		resp.Ask = &levelDTO{Price: quote.Ask.Price.String(), Quantity: quote.Ask.Quantity.String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Stats()
	volumes := make(map[string]string, len(snap.MatchedVolumePerSymbol))
	for symbol, qty := range snap.MatchedVolumePerSymbol {
		volumes[symbol] = qty.String()
	}
	writeJSON(w, http.StatusOK, statsResponseDTO{
		TotalOrdersAccepted: snap.TotalOrdersAccepted,
		TotalOrdersRejected: snap.TotalOrdersRejected,
		TotalTrades:         snap.TotalTrades,
		TotalMatchedVolume:  volumes,
		UptimeSeconds:       snap.Uptime.Seconds(),
	})
}

func toLevelDTOs(levels []book.LevelQuote) []levelDTO {
	out := make([]levelDTO, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, levelDTO{Price: lvl.Price.String(), Quantity: lvl.Quantity.String()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, errorResponseDTO{Error: message, Reason: reason})
}
