package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bings/visallo/internal/core/domain"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/dto"
	"github.com/bings/visallo/internal/middleware"
	"github.com/bings/visallo/pkg/config"
	"github.com/gin-gonic/gin"
)

const oauthStateCookieName = "oauth_state"

// googleAuthHandler handles the Google OAuth2 / ID-token sign-in flow.
type googleAuthHandler struct {
	authHandler *AuthHandler
	userService portssvc.UserSvcFacade
	googleAuth  portssvc.GoogleAuthSvcFacade
	cfg         *config.Config
}

// registerGoogleAuthRoutes sets up the Google sign-in routes under the auth group.
func registerGoogleAuthRoutes(auth *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := &googleAuthHandler{
		authHandler: NewAuthHandler(services.User, services.Token, cfg),
		userService: services.User,
		googleAuth:  services.GoogleAuth,
		cfg:         cfg,
	}

	google := auth.Group("/google")
	{
		google.GET("/login", h.Login)
		google.GET("/callback", h.Callback)
		google.POST("/idtoken", h.IDToken)
	}
}

// Login godoc
// @Summary Start Google OAuth flow
// @Description Redirects the browser to Google's consent page with a CSRF state cookie.
// @Tags auth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *googleAuthHandler) Login(c *gin.Context) {
	state, err := h.googleAuth.GenerateStateString(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to start Google login")
		return
	}
	c.SetCookie(oauthStateCookieName, state, 300, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleAuth.GetGoogleLoginURL(c.Request.Context(), state))
}

// Callback godoc
// @Summary Google OAuth callback
// @Description Exchanges the authorization code, resolves the local user and returns a token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/callback [get]
func (h *googleAuthHandler) Callback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	stateCookie, err := c.Cookie(oauthStateCookieName)
	if err != nil || stateCookie == "" || c.Query("state") != stateCookie {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "OAuth state mismatch"})
		return
	}
	c.SetCookie(oauthStateCookieName, "", -1, "/", "", h.cfg.IsProduction, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code missing"})
		return
	}

	token, err := h.googleAuth.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		logger.Warn("Google code exchange failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Failed to exchange authorization code"})
		return
	}

	info, err := h.googleAuth.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		logger.Warn("Google userinfo fetch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Failed to fetch Google user info"})
		return
	}

	h.completeSignIn(c, info)
}

// IDToken godoc
// @Summary Google ID-token sign-in
// @Description Validates a Google ID token obtained client-side and returns a local token.
// @Tags auth
// @Accept json
// @Produce json
// @Param idtoken body dto.GoogleIDTokenRequest true "Google ID token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/idtoken [post]
func (h *googleAuthHandler) IDToken(c *gin.Context) {
	var req dto.GoogleIDTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	payload, err := h.googleAuth.ValidateGoogleIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Google ID token"})
		return
	}

	info := &domain.GoogleUserInfo{ID: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		info.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		info.Name = name
	}

	h.completeSignIn(c, info)
}

func (h *googleAuthHandler) completeSignIn(c *gin.Context, info *domain.GoogleUserInfo) {
	user, err := h.userService.FindOrCreateGoogleUser(c.Request.Context(), info)
	if err != nil {
		respondServiceError(c, err, "Failed to sign in with Google")
		return
	}

	accessToken, err := h.authHandler.issueTokens(c, user.UserID)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to issue tokens", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: accessToken, User: dto.ToUserResponse(user)})
}
