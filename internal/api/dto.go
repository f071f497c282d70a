package api

import (
	"github.com/splitledger/splitledger/internal/models"
)

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

type memberResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type groupResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Currency  string           `json:"currency"`
	Members   []memberResponse `json:"members"`
	CreatedBy string           `json:"created_by"`
	CreatedAt int64            `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]memberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = memberResponse{UserID: m.UserID, Role: string(m.Role)}
	}
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

type participantResponse struct {
	UserID     string `json:"user_id"`
	ShareCents int64  `json:"share_cents"`
}

type expenseResponse struct {
	ID           string                `json:"id"`
	GroupID      string                `json:"group_id"`
	PayerID      string                `json:"payer_id"`
	Description  string                `json:"description"`
	AmountCents  int64                 `json:"amount_cents"`
	SplitType    string                `json:"split_type"`
	Participants []participantResponse `json:"participants"`
	CreatedBy    string                `json:"created_by"`
	CreatedAt    int64                 `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	participants := make([]participantResponse, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = participantResponse{UserID: p.UserID, ShareCents: int64(p.ShareCents)}
	}
	return expenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		PayerID:      e.PayerID,
		Description:  e.Description,
		AmountCents:  int64(e.AmountCents),
		SplitType:    string(e.SplitType),
		Participants: participants,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}

type settlementResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	FromUserID  string `json:"from_user_id"`
	ToUserID    string `json:"to_user_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
	ConfirmedAt int64  `json:"confirmed_at,omitempty"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		AmountCents: int64(s.AmountCents),
		Method:      s.Method,
		Status:      string(s.Status),
		Note:        s.Note,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		ConfirmedAt: s.ConfirmedAt,
	}
}

func toSettlementResponses(settlements []*models.Settlement) []settlementResponse {
	out := make([]settlementResponse, len(settlements))
	for i, s := range settlements {
		out[i] = toSettlementResponse(s)
	}
	return out
}
