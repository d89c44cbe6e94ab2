package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type memberHandler struct {
	transactions portssvc.TransactionQuerySvc
}

// RegisterMemberRoutes registers the member-facing read routes.
func RegisterMemberRoutes(rg *gin.RouterGroup, transactions portssvc.TransactionQuerySvc) {
	h := &memberHandler{transactions: transactions}

	members := rg.Group("/members")
	{
		members.GET("/:id/transactions", h.getStatement)
	}
}

// getStatement godoc
// @Summary Member statement
// @Description Lists the committed transactions credited to a member. Split transactions report the member's share.
// @Tags members
// @Produce  json
// @Param   id path string true "Member ID"
// @Success 200 {object} dto.MemberStatementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 500 {object} map[string]string "Failed to build statement"
// @Security BearerAuth
// @Router /members/{id}/transactions [get]
func (h *memberHandler) getStatement(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	statement, err := h.transactions.GetMemberStatement(c.Request.Context(), memberID)
	if err != nil {
		respondWithError(c, logger, err, "build statement")
		return
	}

	logger.Debug("Statement built", slog.Int("lines", len(statement.Lines)))
	c.JSON(http.StatusOK, statement)
}
