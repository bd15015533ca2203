package handlers

import (
	"net/http"

	"github.com/SmartSplit/smart-split-backend/services"
	"github.com/gin-gonic/gin"
)

// BalanceHandler serves the balance views: net positions per member, the
// simplified transfer plan, and raw per-expense debts.
type BalanceHandler struct {
	balanceService *services.BalanceService
	groupService   *services.GroupService
}

func NewBalanceHandler(balanceService *services.BalanceService, groupService *services.GroupService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService, groupService: groupService}
}

// GetBalances handles GET /v1/groups/:id/balances.
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	balances, err := h.balanceService.GroupBalances(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetSimplifiedPayments handles GET /v1/groups/:id/balances/simplified.
func (h *BalanceHandler) GetSimplifiedPayments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	payments, err := h.balanceService.SimplifiedPayments(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// GetRawPayments handles GET /v1/groups/:id/balances/raw.
func (h *BalanceHandler) GetRawPayments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	payments, err := h.balanceService.RawPayments(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
