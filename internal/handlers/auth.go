// internal/handlers/auth.go
package handlers

import (
	"net/http"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/middleware"
	"swipevault/internal/models"
	"swipevault/internal/services"
	"swipevault/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.SuccessResponse(c, http.StatusCreated, "account created", user.Public())
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.SuccessResponse(c, http.StatusOK, "logged in", user.Public())
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.ErrUnauthorized, "")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ok", user.Public())
}

// Logout handles POST /auth/logout by clearing the session cookie. Sessions
// are stateless JWTs, so logout is client-side only.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, "", -1, "/", "", false, true)
	utils.SuccessResponse(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(utils.SessionTokenDuration / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	secure := config.GetConfig().IsProduction()
	c.SetCookie(utils.SessionCookieName, token, maxAge, "/", "", secure, true)
}
