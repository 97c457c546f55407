package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/ledger"
	"github.com/smartspend-dev/smartspend/internal/tracker"
)

const noTransactionsAnswer = "No transactions yet. Add some first."

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type addTransactionRequest struct {
	Text   string           `json:"text"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	UserID string           `json:"user_id,omitempty"`
}

type addTransactionResponse struct {
	Message  string          `json:"message"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type analyzeRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

type analyzeResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.svc.AddTransaction(r.Context(), s.user(req.UserID), req.Text, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addTransactionResponse{
		Message:  "Transaction saved",
		Type:     string(rec.Kind),
		Category: rec.Category,
		Amount:   rec.Amount,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.Transactions(r.Context(), r.PathValue("user"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context(), r.PathValue("user"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Payload(r.Context(), r.PathValue("user"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	answer, err := s.svc.Analyze(r.Context(), s.user(req.UserID), req.Query)
	if errors.Is(err, tracker.ErrNoTransactions) {
		writeJSON(w, http.StatusOK, analyzeResponse{Response: noTransactionsAnswer})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Response: answer})
}

// decodeBody reads a JSON body of at most maxBodyBytes into v. On failure
// it writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
	return false
}

func (s *Server) user(id string) string {
	if id == "" {
		return s.cfg.DefaultUser
	}
	return id
}

// writeError maps tracker and ledger errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, tracker.ErrAmountRequired):
		status, detail = http.StatusBadRequest, "amount is required"
	case errors.Is(err, ledger.ErrInvalidAmount):
		status, detail = http.StatusBadRequest, "amount must be positive"
	case errors.Is(err, tracker.ErrEmptyStatement):
		status, detail = http.StatusBadRequest, "text is required"
	case errors.Is(err, ledger.ErrInvalidUser):
		status, detail = http.StatusBadRequest, "invalid user id"
	case errors.Is(err, ledger.ErrStorage):
		status, detail = http.StatusServiceUnavailable, "storage unavailable"
	case errors.Is(err, tracker.ErrAnalysisUnavailable):
		status, detail = http.StatusServiceUnavailable, "analysis is not configured"
	case errors.Is(err, tracker.ErrAnalysisFailed):
		status, detail = http.StatusBadGateway, "analysis failed"
	}

	ev := zerolog.Ctx(r.Context()).Warn()
	if status >= 500 {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
