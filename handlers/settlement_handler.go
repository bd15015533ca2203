package handlers

import (
	"net/http"

	"github.com/SmartSplit/smart-split-backend/services"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/gin-gonic/gin"
)

// SettlementHandler handles HTTP requests for recording and resolving
// settlements.
type SettlementHandler struct {
	settlementService *services.SettlementService
	groupService      *services.GroupService
}

func NewSettlementHandler(settlementService *services.SettlementService, groupService *services.GroupService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService, groupService: groupService}
}

// RecordSettlement handles POST /v1/groups/:id/settlements. Both sides of the
// payment are resolved against the group roster before the reconciliation
// engine runs, so the engine always sees verified member identities.
func (h *SettlementHandler) RecordSettlement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	var req types.RecordSettlementRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	from, err := h.groupService.ResolveMember(c.Request.Context(), groupID, req.FromMemberID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := h.groupService.ResolveMember(c.Request.Context(), groupID, req.ToMemberID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.settlementService.RecordSettlement(c.Request.Context(), types.RecordSettlementParams{
		GroupID:           groupID,
		FromMemberID:      from.MemberID(),
		FromIsPlaceholder: from.IsPlaceholder,
		FromDisplayName:   from.DisplayName,
		ToMemberID:        to.MemberID(),
		ToIsPlaceholder:   to.IsPlaceholder,
		ToDisplayName:     to.DisplayName,
		Amount:            req.Amount,
		RecordedBy:        userID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListSettlements handles GET /v1/groups/:id/settlements.
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	settlements, err := h.settlementService.ListSettlements(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlements)
}

// ListPendingApprovals handles GET /v1/settlements/pending: every settlement
// waiting on the authenticated user's approval, across groups.
func (h *SettlementHandler) ListPendingApprovals(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	settlements, err := h.settlementService.ListPendingForPayee(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlements)
}

// ApproveSettlement handles POST /v1/settlements/:settlementId/approve.
func (h *SettlementHandler) ApproveSettlement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	settlement, err := h.settlementService.ApproveSettlement(c.Request.Context(), c.Param("settlementId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// RejectSettlement handles POST /v1/settlements/:settlementId/reject.
func (h *SettlementHandler) RejectSettlement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	settlement, err := h.settlementService.RejectSettlement(c.Request.Context(), c.Param("settlementId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}
