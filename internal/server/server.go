// Package server exposes the derivation engine over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"market-intel/internal/engine"
	"market-intel/internal/logger"
	"market-intel/internal/newsfeed"
	"market-intel/internal/store"
	"market-intel/internal/types"
)

const defaultScanLimit = 9

type Server struct {
	engine *engine.Engine
	store  store.Store
	feed   *newsfeed.Feed
	http   *http.Server
}

func New(addr string, eng *engine.Engine, st store.Store, feed *newsfeed.Feed) *Server {
	s := &Server{engine: eng, store: st, feed: feed}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /analyze/{symbol}", s.handleAnalyzeGet)
	mux.HandleFunc("POST /analyze", s.handleAnalyzePost)
	mux.HandleFunc("POST /news/analyze", s.handleNewsAnalyze)
	mux.HandleFunc("GET /news/scan", s.handleNewsScan)
	mux.HandleFunc("GET /news/{id}", s.handleNewsGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyzeGet(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	exchange := r.URL.Query().Get("exchange")
	if exchange == "" {
		exchange = "NSE"
	}
	s.analyze(w, r, symbol, exchange)
}

type analyzeRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

func (s *Server) handleAnalyzePost(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Exchange == "" {
		req.Exchange = "NSE"
	}
	s.analyze(w, r, req.Symbol, req.Exchange)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, symbol, exchange string) {
	report, err := s.engine.AnalyzeStock(r.Context(), symbol, exchange)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type newsAnalyzeRequest struct {
	Article types.Article `json:"article"`
	// Optional pre-extracted inputs; when set, extraction is skipped.
	Entities *types.Entities `json:"entities,omitempty"`
	Facts    []string        `json:"facts,omitempty"`
}

func (s *Server) handleNewsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req newsAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var report types.NewsReport
	var err error
	if req.Entities != nil || req.Facts != nil {
		var entities types.Entities
		if req.Entities != nil {
			entities = *req.Entities
		}
		report, err = s.engine.AnalyzeArticleWith(r.Context(), req.Article, entities, req.Facts)
	} else {
		report, err = s.engine.AnalyzeArticle(r.Context(), req.Article)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleNewsScan fetches fresh articles for a query term and runs each
// through the classification pipeline.
func (s *Server) handleNewsScan(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	limit := defaultScanLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	articles, err := s.feed.Fetch(r.Context(), query, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reports := make([]types.NewsReport, 0, len(articles))
	for _, article := range articles {
		report, err := s.engine.AnalyzeArticle(r.Context(), article)
		if err != nil {
			logger.Warn(r.Context(), "Article skipped", "headline", article.Headline, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleNewsGet(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.NewsReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrDataUnavailable):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error(context.Background(), "Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
