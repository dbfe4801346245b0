package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// Machine-readable error kinds surfaced to API clients
const (
	KindNotFound     = "not_found"
	KindInvalidInput = "invalid_input"
	KindInvalidState = "invalid_state"
	KindUnauthorized = "unauthorized"
	KindConflict     = "conflict"
	KindDependency   = "dependency_failure"
	KindInternal     = "internal"
)

// Context keys set by the auth middleware
const (
	ContextUserIDKey = "auth_user_id"
	ContextRoleKey   = "auth_user_role"
)

// UserIDFromContext returns the authenticated user's id, if any
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// RoleFromContext returns the authenticated user's role, if any
func RoleFromContext(c *gin.Context) model.Role {
	return model.Role(c.GetString(ContextRoleKey))
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, KindInvalidInput, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status, error kind and message
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, KindNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, KindNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, KindNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, KindInvalidInput, "bid amount must be higher than current price"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, KindInvalidInput, "invalid request details"
	case errors.Is(err, auctionerrors.ErrInvalidState):
		return http.StatusConflict, KindInvalidState, "action not allowed in current auction state"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusForbidden, KindUnauthorized, "not authorized for this action"
	case errors.Is(err, auctionerrors.ErrUserExists):
		return http.StatusConflict, KindConflict, "user already exists"
	case errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusConflict, KindConflict, "operation lost a concurrent update, retry"
	case errors.Is(err, auctionerrors.ErrDependency):
		return http.StatusBadGateway, KindDependency, "dependency unavailable"
	default:
		return http.StatusInternalServerError, KindInternal, "internal server error"
	}
}

// RespondError maps err and writes the standardized error body
func RespondError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, kind, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, kind, fmt.Errorf("%s: %w", message, err), message)

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["error"] = err.Error()
	utils.Warn(handlerName+": request failed", ctx)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
