package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Description Username and email must be unique. Passwords need 8-16 characters with upper, lower, digit and special characters.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "New account"
// @Success 201 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request")
		return
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req); err != nil {
		writeError(c, err, errorMessages{})
		return
	}

	c.JSON(http.StatusCreated, model.MessageResponse{
		Success: true,
		Message: "User created successfully!",
	})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Username and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, errorMessages{NotFound: "User not found."})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Success:     true,
		Message:     "Logged in successfully!",
		AccessToken: result.AccessToken,
	})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Success: false, Message: msgNoToken})
		return
	}
	c.JSON(http.StatusOK, model.MeResponse{Success: true, Data: *identity})
}
