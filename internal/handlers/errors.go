package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyArchived),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrSameMemberTransfer),
		errors.Is(err, apperrors.ErrSplitSumMismatch),
		errors.Is(err, apperrors.ErrEmptyRecipientSet),
		errors.Is(err, apperrors.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the error body for a failed service call and logs it at a level
// matching its status. Internal failures hide their cause from the client.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := statusFor(err)
	kind := apperrors.Kind(err)
	if status == http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action, "kind": kind})
		return
	}

	logger.Warn("Rejected request to "+action, slog.String("kind", kind), slog.String("error", err.Error()))
	body := gin.H{"error": err.Error(), "kind": kind}
	var mismatch *apperrors.SplitSumMismatchError
	if errors.As(err, &mismatch) {
		body["expected"] = mismatch.Expected.StringFixed(2)
		body["provided"] = mismatch.Provided.StringFixed(2)
		body["delta"] = mismatch.Delta.StringFixed(2)
	}
	c.JSON(status, body)
}

// respondWithBindError reports request binding failures as 400 with one message per field.
func respondWithBindError(c *gin.Context, logger *slog.Logger, err error, what string) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, formatFieldError(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what, "kind": "Validation", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + ": " + err.Error(), "kind": "Validation"})
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is absent", field, fe.Param())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
