package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bobmcallan/navcast/internal/models"
)

// --- Valuation handlers ---

// handleValuations handles GET /api/valuations. ?force=true bypasses the
// short result cache.
func (s *Server) handleValuations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	force := r.URL.Query().Get("force") == "true" || r.URL.Query().Get("force") == "1"

	funds := s.app.FundStore.Load(r.Context())
	board := s.app.ValuationService.EstimateAll(r.Context(), funds, force)

	WriteJSON(w, http.StatusOK, board)
}

// --- Fund list handlers ---

func (s *Server) handleFundsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFundList(w, r)
	case http.MethodPost:
		s.handleFundUpsert(w, r)
	case http.MethodPut:
		s.handleFundReplaceAll(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodPut)
	}
}

func (s *Server) handleFundList(w http.ResponseWriter, r *http.Request) {
	funds := s.app.FundStore.Load(r.Context())
	if funds == nil {
		funds = []models.FundRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"funds": funds,
	})
}

func (s *Server) handleFundUpsert(w http.ResponseWriter, r *http.Request) {
	var fund models.FundRecord
	if !DecodeJSON(w, r, &fund) {
		return
	}
	if fund.Code == "" {
		WriteError(w, http.StatusBadRequest, "Fund code is required")
		return
	}

	if err := s.app.FundStore.Upsert(r.Context(), fund); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving fund: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, fund)
}

func (s *Server) handleFundReplaceAll(w http.ResponseWriter, r *http.Request) {
	var funds []models.FundRecord
	if !DecodeJSON(w, r, &funds) {
		return
	}
	for _, f := range funds {
		if f.Code == "" {
			WriteError(w, http.StatusBadRequest, "Every fund needs a code")
			return
		}
	}

	if err := s.app.FundStore.Save(r.Context(), funds); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving fund list: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"funds": funds,
	})
}

func (s *Server) handleFundDelete(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.FundStore.Delete(r.Context(), code); err != nil {
		if errors.Is(err, models.ErrFundNotFound) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Fund not found: %s", code))
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting fund: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"deleted": code})
}

// handleFundNav handles GET /api/funds/{code}/nav.
func (s *Server) handleFundNav(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	nav, err := s.app.ValuationService.NavHistory(r.Context(), code, limit)
	if err != nil {
		if errors.Is(err, models.ErrNoNavHistory) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("No NAV history for fund: %s", code))
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error fetching NAV history: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"code": code,
		"nav":  nav,
	})
}

// --- Market handlers ---

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	board := s.app.MarketService.IndexBoard(r.Context())
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"indices": board,
	})
}

// --- Directory search ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	matches, err := s.app.ValuationService.SearchFunds(r.Context(), query, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Search error: %v", err))
		return
	}
	if matches == nil {
		matches = []models.FundInfo{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": matches,
	})
}
