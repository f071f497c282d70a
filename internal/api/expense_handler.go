package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

// ExpenseHandler wires HTTP endpoints for expenses and split previews.
type ExpenseHandler struct {
	service   *service.ExpenseService
	validator *validator.Validate
}

// NewExpenseHandler constructs an ExpenseHandler.
func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: svc, validator: validator.New()}
}

// MountGroupRoutes registers the expense routes nested under a group.
func (h *ExpenseHandler) MountGroupRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

// MountRoutes registers the top-level expense routes.
func (h *ExpenseHandler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Get("/{expenseID}", h.get)
	r.Put("/{expenseID}", h.update)
	r.Delete("/{expenseID}", h.delete)
}

type participantRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	ShareCents   *int64 `json:"share_cents,omitempty"`
	SharePercent *int64 `json:"share_percent_bp,omitempty"`
	ShareCount   *int64 `json:"share_count,omitempty"`
}

type expenseRequest struct {
	PayerID      string               `json:"payer_id" validate:"required"`
	Description  string               `json:"description"`
	AmountCents  int64                `json:"amount_cents" validate:"required,min=1"`
	SplitType    string               `json:"split_type" validate:"required"`
	Participants []participantRequest `json:"participants" validate:"required,min=1,dive"`
}

type previewRequest struct {
	AmountCents  int64                `json:"amount_cents" validate:"required,min=1"`
	SplitType    string               `json:"split_type" validate:"required"`
	Participants []participantRequest `json:"participants" validate:"required,min=1,dive"`
}

type previewResponse struct {
	Participants []participantResponse `json:"participants"`
}

func toParticipantInputs(reqs []participantRequest) []calculator.ParticipantInput {
	inputs := make([]calculator.ParticipantInput, len(reqs))
	for i, p := range reqs {
		input := calculator.ParticipantInput{UserID: p.UserID}
		if p.ShareCents != nil {
			v := money.Cents(*p.ShareCents)
			input.ShareCents = &v
		}
		if p.SharePercent != nil {
			v := money.BasisPoints(*p.SharePercent)
			input.SharePercent = &v
		}
		if p.ShareCount != nil {
			v := *p.ShareCount
			input.ShareCount = &v
		}
		inputs[i] = input
	}
	return inputs
}

func (h *ExpenseHandler) decodeExpense(w http.ResponseWriter, r *http.Request) (expenseRequest, bool) {
	var req expenseRequest
	if err := DecodeJSON(r, &req); err != nil {
		Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	if !models.SplitType(req.SplitType).Valid() {
		Problem(w, http.StatusBadRequest, "Invalid Request", "unknown split type "+req.SplitType)
		return req, false
	}
	return req, true
}

func (h *ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}

	expense, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), service.ExpenseInput{
		GroupID:      chi.URLParam(r, "groupID"),
		PayerID:      req.PayerID,
		Description:  req.Description,
		AmountCents:  money.Cents(req.AmountCents),
		SplitType:    models.SplitType(req.SplitType),
		Participants: toParticipantInputs(req.Participants),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.ListByGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	JSON(w, http.StatusOK, out)
}

func (h *ExpenseHandler) get(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "expenseID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *ExpenseHandler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}

	expense, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "expenseID"), service.ExpenseInput{
		PayerID:      req.PayerID,
		Description:  req.Description,
		AmountCents:  money.Cents(req.AmountCents),
		SplitType:    models.SplitType(req.SplitType),
		Participants: toParticipantInputs(req.Participants),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *ExpenseHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "expenseID")); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// preview runs the splitter without persisting anything, so clients can show
// the per-member shares before the expense is saved.
func (h *ExpenseHandler) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := DecodeJSON(r, &req); err != nil {
		Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !models.SplitType(req.SplitType).Valid() {
		Problem(w, http.StatusBadRequest, "Invalid Request", "unknown split type "+req.SplitType)
		return
	}

	shares, err := h.service.ComputeSplit(money.Cents(req.AmountCents), models.SplitType(req.SplitType), toParticipantInputs(req.Participants))
	if err != nil {
		RespondError(w, err)
		return
	}
	participants := make([]participantResponse, len(shares))
	for i, p := range shares {
		participants[i] = participantResponse{UserID: p.UserID, ShareCents: int64(p.ShareCents)}
	}
	JSON(w, http.StatusOK, previewResponse{Participants: participants})
}
