package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

// GroupHandler wires HTTP endpoints for group management.
type GroupHandler struct {
	service   *service.GroupService
	validator *validator.Validate
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{service: svc, validator: validator.New()}
}

// MountRoutes registers the collection-level group routes.
func (h *GroupHandler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

// MountGroupRoutes registers the routes for a single group, nested under
// its groupID.
func (h *GroupHandler) MountGroupRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Delete("/", h.delete)
	r.Post("/members", h.addMembers)
}

type createGroupRequest struct {
	Name      string   `json:"name" validate:"required"`
	Currency  string   `json:"currency" validate:"required,len=3"`
	MemberIDs []string `json:"member_ids"`
}

type addMembersRequest struct {
	MemberIDs []string `json:"member_ids" validate:"required,min=1"`
}

func (h *GroupHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := DecodeJSON(r, &req); err != nil {
		Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	group, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Currency, req.MemberIDs)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *GroupHandler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		RespondError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	JSON(w, http.StatusOK, out)
}

func (h *GroupHandler) get(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *GroupHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID")); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) addMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := DecodeJSON(r, &req); err != nil {
		Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	group, err := h.service.AddMembers(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), req.MemberIDs)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, http.StatusOK, toGroupResponse(group))
}
