package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

// SettlementHandler wires HTTP endpoints for balances and the settlement
// lifecycle.
type SettlementHandler struct {
	service   *service.SettlementService
	validator *validator.Validate
}

// NewSettlementHandler constructs a SettlementHandler.
func NewSettlementHandler(svc *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{service: svc, validator: validator.New()}
}

// MountGroupRoutes registers the balance and settlement routes nested under
// a group.
func (h *SettlementHandler) MountGroupRoutes(r chi.Router) {
	r.Get("/balances", h.balances)
	r.Get("/settlements", h.list)
	r.Post("/settlements", h.record)
	r.Post("/settlements/plan", h.proposePlan)
}

// MountRoutes registers the top-level settlement routes.
func (h *SettlementHandler) MountRoutes(r chi.Router) {
	r.Post("/{settlementID}/confirm", h.confirm)
	r.Delete("/{settlementID}", h.cancel)
}

type balanceEntry struct {
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
}

type balancesResponse struct {
	GroupID  string         `json:"group_id"`
	Balances []balanceEntry `json:"balances"`
}

type recordSettlementRequest struct {
	FromUserID  string `json:"from_user_id" validate:"required"`
	ToUserID    string `json:"to_user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=1"`
	Method      string `json:"method"`
	Note        string `json:"note"`
}

func (h *SettlementHandler) balances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	balances, err := h.service.ComputeBalances(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		RespondError(w, err)
		return
	}

	entries := make([]balanceEntry, 0, len(balances))
	for userID, b := range balances {
		entries = append(entries, balanceEntry{UserID: userID, BalanceCents: int64(b)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	JSON(w, http.StatusOK, balancesResponse{GroupID: groupID, Balances: entries})
}

func (h *SettlementHandler) list(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.service.ListByGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toSettlementResponses(settlements))
}

func (h *SettlementHandler) record(w http.ResponseWriter, r *http.Request) {
	var req recordSettlementRequest
	if err := DecodeJSON(r, &req); err != nil {
		Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	settlement, err := h.service.Record(r.Context(), middleware.GetUserID(r.Context()), service.SettlementInput{
		GroupID:     chi.URLParam(r, "groupID"),
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		AmountCents: money.Cents(req.AmountCents),
		Method:      req.Method,
		Note:        req.Note,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (h *SettlementHandler) proposePlan(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.service.ProposePlan(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusCreated, toSettlementResponses(settlements))
}

func (h *SettlementHandler) confirm(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.service.Confirm(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "settlementID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *SettlementHandler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "settlementID")); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
