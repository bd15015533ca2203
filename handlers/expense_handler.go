package handlers

import (
	"net/http"

	"github.com/SmartSplit/smart-split-backend/services"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles HTTP requests for the expense ledger.
type ExpenseHandler struct {
	expenseService *services.ExpenseService
	groupService   *services.GroupService
}

func NewExpenseHandler(expenseService *services.ExpenseService, groupService *services.GroupService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, groupService: groupService}
}

// CreateExpense handles POST /v1/groups/:id/expenses.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	var req types.CreateExpenseRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), groupID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListExpenses handles GET /v1/groups/:id/expenses.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// GetExpense handles GET /v1/groups/:id/expenses/:expenseId.
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("expenseId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles DELETE /v1/groups/:id/expenses/:expenseId.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("expenseId"), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
