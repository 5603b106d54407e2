package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sw33tLie/kwscope/pkg/cache"
	"github.com/sw33tLie/kwscope/pkg/dispatch"
	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/storage"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const maxRequestBody = 64 << 10

// statusClientClosedRequest is the nginx convention for a client that hung up
// before the response was ready.
const statusClientClosedRequest = 499

type errorResponse struct {
	Error     string                   `json:"error"`
	Kind      string                   `json:"kind,omitempty"`
	RequestID string                   `json:"request_id,omitempty"`
	Providers []suggest.ProviderStatus `json:"providers,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var nre *dispatch.NoResultsError
	switch {
	case errors.Is(err, suggest.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: string(suggest.ErrKindInvalidInput)})
	case errors.As(err, &nre):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "no_usable_providers", RequestID: nre.RequestID, Providers: nre.Providers})
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		s.Log.Debugf("Request abandoned by client: %v", err)
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error(), Kind: string(suggest.ErrTimeout)})
	default:
		s.Log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(suggest.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggest.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.App.Suggest(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type ScoreRequest struct {
	Keyword  string `json:"keyword"`
	Language string `json:"language"`
	Country  string `json:"country"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	score, err := s.App.Score(r.Context(), req.Keyword, req.Language, req.Country)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.App.Providers())
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	families := s.App.Resolver.Families()
	if f := r.URL.Query().Get("family"); f != "" {
		families = []string{f}
	}
	out := make(map[string][]locale.Resolution, len(families))
	for _, f := range families {
		out[f] = s.App.Resolver.Resolutions(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.App.DB == nil {
		http.Error(w, "history is disabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	opts := storage.ListOptions{
		Keyword:       q.Get("keyword"),
		WithProviders: q.Get("providers") == "true",
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		opts.Limit = n
	}
	if v := q.Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "bad since duration", http.StatusBadRequest)
			return
		}
		opts.Since = time.Now().Add(-d)
	}

	recs, err := s.App.DB.ListRecent(r.Context(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type statsResponse struct {
	Providers []storage.ProviderStats `json:"providers,omitempty"`
	Cache     *cache.Stats            `json:"cache,omitempty"`
	Breakers  []dispatch.BreakerState `json:"breakers"`
	PoolSize  int                     `json:"pool_size"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := statsResponse{
		Breakers: s.App.Dispatcher.Breaker().Snapshot(),
		PoolSize: s.App.Dispatcher.PoolSize(),
	}
	if s.App.DB != nil {
		stats, err := s.App.DB.GetStats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out.Providers = stats
	}
	if s.App.Cache != nil {
		cs := s.App.Cache.Stats()
		out.Cache = &cs
	}
	writeJSON(w, http.StatusOK, out)
}
