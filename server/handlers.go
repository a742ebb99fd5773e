package server

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/asterpay/x402/gate"
	"github.com/asterpay/x402/ledger"
	"github.com/asterpay/x402/textservice"
	"github.com/asterpay/x402/types"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type statsResponse struct {
	ledger.Snapshot
	Prices map[string]string `json:"prices"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: ServiceName})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Snapshot: s.market.Stats(),
		Prices:   s.market.Prices(),
	})
}

func (s *Server) pricing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.market.Pricing())
}

// operation binds a priced operation to its request schema, its prompt
// and the shape of its result.
type operation[T any] struct {
	op      types.Operation
	missing string
	failure string
	prompt  func(T) textservice.Prompt
	result  func(T, string) map[string]any
}

// handle validates the body, checks the upstream, then gates the call.
// Requests rejected before the gate are not counted by the ledger.
func handle[T any](s *Server, o operation[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := requestLogger(ctx)

		var req T
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: o.missing})
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: o.missing})
			return
		}

		if s.text == nil || !s.text.Available() {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "AI service unavailable"})
			return
		}

		decision, err := s.market.Guard(ctx, o.op, r.Header.Get(gate.ProofHeader), r.URL.Path)
		if err != nil {
			log.Error("gate failed", map[string]any{"operation": o.op, "error": err})
			writeJSON(w, types.HTTPStatus(types.ErrorCode(err)), errorResponse{Error: err.Error()})
			return
		}

		switch decision.Kind {
		case types.DecisionChallenge:
			writeJSON(w, http.StatusPaymentRequired, decision.Challenge)
			return
		case types.DecisionReject:
			writeJSON(w, http.StatusPaymentRequired, decision.Rejection)
			return
		}

		text, err := s.text.Process(ctx, o.prompt(req))
		if err != nil {
			log.Error("upstream processing failed", map[string]any{"operation": o.op, "error": err})
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: o.failure, Details: err.Error()})
			return
		}

		body := o.result(req, text)
		body["success"] = true
		body["cost"] = decision.Amount
		body["currency"] = types.CurrencyUSDC
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
