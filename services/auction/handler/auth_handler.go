package handler

import (
	"errors"
	"net/http"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AuthServiceInterface interface {
	Register(username, fullName, email, password string, role model.Role) (model.User, string, error)
	Login(email, password string) (model.User, string, error)
	GetProfile(userID string) (model.User, error)
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, token, err := h.service.Register(req.Username, req.FullName, req.Email, req.Password, model.Role(req.Role))
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"email": req.Email})
		return
	}

	resp := helpers.AuthResponse{User: helpers.UserToResponse(user), Token: token}
	utils.JSONResponse(c, http.StatusCreated, resp, "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{
		"user_id": user.UserID,
		"role":    string(user.Role),
	})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		// Bad credentials are a 401, not the 403 the generic map yields.
		if errors.Is(err, auctionerrors.ErrUnauthorized) || errors.Is(err, auctionerrors.ErrUserNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, helpers.KindUnauthorized, err, "invalid credentials")
			utils.Warn("LoginHandler: login rejected", map[string]any{"email": req.Email})
			return
		}
		helpers.RespondError(c, "LoginHandler", err, map[string]any{"email": req.Email})
		return
	}

	resp := helpers.AuthResponse{User: helpers.UserToResponse(user), Token: token}
	utils.JSONResponse(c, http.StatusOK, resp, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": user.UserID})
}

// ProfileHandler handles GET /api/users/profile
func (h *AuthHandler) ProfileHandler(c *gin.Context) {
	userID := helpers.UserIDFromContext(c)

	user, err := h.service.GetProfile(userID)
	if err != nil {
		helpers.RespondError(c, "ProfileHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.UserToResponse(user), "profile retrieved successfully")
}
