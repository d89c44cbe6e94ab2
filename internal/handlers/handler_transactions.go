package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/dto"
	"github.com/SscSPs/reconciliation_engine/internal/middleware"
	"github.com/SscSPs/reconciliation_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for reconciling statement transactions.
type transactionHandler struct {
	matching     portssvc.MatchingSvc
	assignment   portssvc.AssignmentSvc
	archive      portssvc.ArchiveSvc
	bulk         portssvc.BulkSvc
	transactions portssvc.TransactionQuerySvc
	analytics    *utils.PosthogClientWrapper
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(services *portssvc.ServiceContainer, analytics *utils.PosthogClientWrapper) *transactionHandler {
	return &transactionHandler{
		matching:     services.Matching,
		assignment:   services.Assignment,
		archive:      services.Archive,
		bulk:         services.Bulk,
		transactions: services.Transactions,
		analytics:    analytics,
	}
}

// RegisterTransactionRoutes registers routes related to transactions.
func RegisterTransactionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, analytics *utils.PosthogClientWrapper) {
	h := newTransactionHandler(services, analytics)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.POST("/match", h.matchUnassigned)
		transactions.POST("/bulk-assign", h.bulkAssign)
		transactions.POST("/bulk-archive", h.bulkArchive)
		transactions.GET("/:id", h.getTransaction)
		transactions.GET("/:id/suggestions", h.suggestMembers)
		transactions.POST("/:id/assign", h.assignTransaction)
		transactions.POST("/:id/transfer", h.transferTransaction)
		transactions.POST("/:id/split", h.splitTransaction)
		transactions.POST("/:id/archive", h.archiveTransaction)
		transactions.POST("/:id/restore", h.restoreTransaction)
	}
}

// operator resolves the authenticated operator or writes a 401.
func operator(c *gin.Context, logger *slog.Logger) (string, bool) {
	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Error("Operator ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return operatorID, true
}

// matchUnassigned godoc
// @Summary Run the matching sweep
// @Description Scores every unassigned or draft transaction against the active member registry and commits the outcome
// @Tags transactions
// @Produce  json
// @Success 200 {object} dto.MatchSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to run matching"
// @Security BearerAuth
// @Router /transactions/match [post]
func (h *transactionHandler) matchUnassigned(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := operator(c, logger); !ok {
		return
	}

	logger.Info("Received request to run matching sweep")
	summary, err := h.matching.MatchUnassigned(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "run matching")
		return
	}

	logger.Info("Matching sweep completed",
		slog.Int("auto_assigned", summary.AutoAssigned),
		slog.Int("draft_assigned", summary.DraftAssigned),
		slog.Int("unassigned", summary.Unassigned),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("total_processed", summary.TotalProcessed),
	)
	middleware.PosthogEvent(c, h.analytics, "matching_sweep", map[string]any{
		"auto_assigned":   summary.AutoAssigned,
		"draft_assigned":  summary.DraftAssigned,
		"total_processed": summary.TotalProcessed,
	})
	c.JSON(http.StatusOK, dto.ToMatchSummaryResponse(summary))
}

// listTransactions godoc
// @Summary List transactions
// @Description Retrieves a filtered page of transactions. Archived transactions are hidden unless requested.
// @Tags transactions
// @Produce  json
// @Param   status query string false "Assignment status" Enums(unassigned, draft, auto_assigned, manual_assigned, duplicate)
// @Param   member_id query string false "Owning member"
// @Param   archived query bool false "Only archived (true) or only active (false)"
// @Param   include_archived query bool false "Include archived transactions"
// @Param   search query string false "Search particulars and transaction code"
// @Param   date_from query string false "Earliest transaction date (YYYY-MM-DD)"
// @Param   date_to query string false "Latest transaction date (YYYY-MM-DD)"
// @Param   sort_by query string false "Sort field" Enums(transaction_date, amount)
// @Param   sort_order query string false "Sort order" Enums(asc, desc)
// @Param   limit query int false "Page size" default(50)
// @Param   next_token query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithBindError(c, logger, err, "query parameters")
		return
	}

	resp, err := h.transactions.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "list transactions")
		return
	}

	logger.Debug("Transactions listed", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction with its split allocations and match logs
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", c.Param("id")))

	tx, err := h.transactions.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// suggestMembers godoc
// @Summary Suggest members for a transaction
// @Description Scores one transaction against the active registry without writing anything
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {array} dto.MatchCandidateResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to score transaction"
// @Security BearerAuth
// @Router /transactions/{id}/suggestions [get]
func (h *transactionHandler) suggestMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", c.Param("id")))

	candidates, err := h.matching.SuggestMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "score transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToMatchCandidateResponses(candidates))
}

// assignTransaction godoc
// @Summary Assign a transaction to a member
// @Description Assigns an unassigned or draft transaction, or transfers an owned one, to an active member
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.AssignTransactionRequest true "Target member"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction or member not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Failure 422 {object} map[string]string "Archived, duplicate or same member"
// @Failure 500 {object} map[string]string "Failed to assign transaction"
// @Security BearerAuth
// @Router /transactions/{id}/assign [post]
func (h *transactionHandler) assignTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.AssignTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "assign request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("member_id", req.MemberID))
	tx, err := h.assignment.AssignTransaction(c.Request.Context(), transactionID, req.MemberID, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "assign transaction")
		return
	}

	logger.Info("Transaction assigned")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// transferTransaction godoc
// @Summary Transfer or split a transaction
// @Description Moves a transaction to one member (toMemberID) or splits it across several (recipients). Exactly one of the two is accepted.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.TransferTransactionRequest true "Transfer target"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction or member not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Failure 422 {object} map[string]string "Rejected by the assignment rules"
// @Failure 500 {object} map[string]string "Failed to transfer transaction"
// @Security BearerAuth
// @Router /transactions/{id}/transfer [post]
func (h *transactionHandler) transferTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.TransferTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "transfer request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	if req.IsSplit() {
		h.split(c, logger, transactionID, req.Recipients, req.Notes, operatorID)
		return
	}

	logger = logger.With(slog.String("member_id", req.ToMemberID))
	tx, err := h.assignment.TransferTransaction(c.Request.Context(), transactionID, req.ToMemberID, req.Notes, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "transfer transaction")
		return
	}

	logger.Info("Transaction transferred")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// splitTransaction godoc
// @Summary Split a transaction across members
// @Description Divides a transaction across members. Shares must be positive and add up to the transaction amount within 0.01.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.SplitTransactionRequest true "Recipients"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction or member not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Failure 422 {object} map[string]string "Empty recipients, invalid amount or sum mismatch"
// @Failure 500 {object} map[string]string "Failed to split transaction"
// @Security BearerAuth
// @Router /transactions/{id}/split [post]
func (h *transactionHandler) splitTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.SplitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "split request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	h.split(c, logger, transactionID, req.Recipients, req.Notes, operatorID)
}

func (h *transactionHandler) split(c *gin.Context, logger *slog.Logger, transactionID string, recipients []dto.SplitRecipientRequest, notes, operatorID string) {
	logger = logger.With(slog.Int("recipients", len(recipients)))
	tx, err := h.assignment.SplitTransaction(c.Request.Context(), transactionID, dto.ToSplitRecipients(recipients), notes, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "split transaction")
		return
	}

	logger.Info("Transaction split")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// archiveTransaction godoc
// @Summary Archive a transaction
// @Description Hides a transaction from default listings. The assignment is kept.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.ArchiveTransactionRequest false "Optional reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 422 {object} map[string]string "Already archived"
// @Failure 500 {object} map[string]string "Failed to archive transaction"
// @Security BearerAuth
// @Router /transactions/{id}/archive [post]
func (h *transactionHandler) archiveTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.ArchiveTransactionRequest
	// The body is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithBindError(c, logger, err, "archive request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	tx, err := h.archive.ArchiveTransaction(c.Request.Context(), transactionID, req.Reason, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "archive transaction")
		return
	}

	logger.Info("Transaction archived")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// restoreTransaction godoc
// @Summary Restore an archived transaction
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 422 {object} map[string]string "Transaction is not archived"
// @Failure 500 {object} map[string]string "Failed to restore transaction"
// @Security BearerAuth
// @Router /transactions/{id}/restore [post]
func (h *transactionHandler) restoreTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	tx, err := h.archive.RestoreTransaction(c.Request.Context(), transactionID, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "restore transaction")
		return
	}

	logger.Info("Transaction restored")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// bulkAssign godoc
// @Summary Assign many transactions to one member
// @Description Each transaction is handled independently; failures are reported per item as "<id>: <Kind>"
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkAssignRequest true "Transactions and target member"
// @Success 200 {object} dto.BulkResultResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 500 {object} map[string]string "Failed to bulk assign"
// @Security BearerAuth
// @Router /transactions/bulk-assign [post]
func (h *transactionHandler) bulkAssign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "bulk assign request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("member_id", req.MemberID), slog.Int("requested", len(req.TransactionIDs)))
	result, err := h.bulk.BulkAssign(c.Request.Context(), req.TransactionIDs, req.MemberID, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "bulk assign")
		return
	}

	logger.Info("Bulk assign completed", slog.Int("success", result.Success), slog.Int("failed", result.Failed))
	middleware.PosthogEvent(c, h.analytics, "bulk_assign", map[string]any{"success": result.Success, "failed": result.Failed})
	c.JSON(http.StatusOK, dto.ToBulkResultResponse(result))
}

// bulkArchive godoc
// @Summary Archive many transactions
// @Description Already archived transactions are reported as skipped
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkArchiveRequest true "Transactions and optional reason"
// @Success 200 {object} dto.BulkResultResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to bulk archive"
// @Security BearerAuth
// @Router /transactions/bulk-archive [post]
func (h *transactionHandler) bulkArchive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "bulk archive request")
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int("requested", len(req.TransactionIDs)))
	result, err := h.bulk.BulkArchive(c.Request.Context(), req.TransactionIDs, req.Reason, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "bulk archive")
		return
	}

	logger.Info("Bulk archive completed",
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", len(result.Skipped)),
	)
	middleware.PosthogEvent(c, h.analytics, "bulk_archive", map[string]any{"success": result.Success, "skipped": len(result.Skipped)})
	c.JSON(http.StatusOK, dto.ToBulkResultResponse(result))
}
