package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/metrics"
	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/service"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// AuthService is implemented by *service.AuthService.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.Profile, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, oldToken string) (service.Session, error)
}

// AccessTokenIssuer signs access tokens for a user profile.
type AccessTokenIssuer interface {
	IssueAccessToken(p model.Profile) (utils.AccessToken, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth   AuthService
	Tokens AccessTokenIssuer
	Log    *zap.Logger
}

func NewAuthHandler(auth AuthService, tokens AccessTokenIssuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Tokens: tokens, Log: log.Named("auth")}
}

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Phone    string `json:"phone" validate:"required,max=32"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a customer account.  No session is opened.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return respondError(c, h.Log, "register", err, nil)
	}
	metrics.RecordAuth("register", metrics.OutcomeSuccess)
	return utils.Success(c, http.StatusCreated, "User registered successfully", p)
}

// Login verifies credentials and sets both session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, "login", err, nil)
	}
	access, err := h.Tokens.IssueAccessToken(sess.User)
	if err != nil {
		return respondError(c, h.Log, "login", err, nil)
	}

	h.setSession(c, access.Token, sess.RefreshToken)
	metrics.RecordAuth("login", metrics.OutcomeSuccess)
	return utils.Success(c, http.StatusOK, "User logged in successfully", tokenPair{
		AccessToken:  access.Token,
		RefreshToken: sess.RefreshToken,
	})
}

// Logout revokes the presented refresh token.  Cookies are cleared whatever
// the outcome.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := utils.GetRefreshToken(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	err := h.Auth.Logout(ctx, raw)
	clearSession(c)
	if err != nil {
		return respondError(c, h.Log, "logout", err, nil)
	}
	metrics.RecordAuth("logout", metrics.OutcomeSuccess)
	return utils.Success(c, http.StatusOK, "Logout successful", nil)
}

// Refresh rotates the refresh token and issues a new access token.  Any
// failure leaves the client without session cookies.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := utils.GetRefreshToken(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		clearSession(c)
		return respondError(c, h.Log, "refresh", err, nil)
	}
	access, err := h.Tokens.IssueAccessToken(sess.User)
	if err != nil {
		// The client never sees the rotated token, so drop its row.
		if lerr := h.Auth.Logout(ctx, sess.RefreshToken); lerr != nil {
			h.Log.Warn("revoke unsent refresh token failed", zap.Error(lerr))
		}
		clearSession(c)
		return respondError(c, h.Log, "refresh", err, nil)
	}

	h.setSession(c, access.Token, sess.RefreshToken)
	metrics.RecordAuth("refresh", metrics.OutcomeSuccess)
	return utils.Success(c, http.StatusOK, "Tokens refreshed successfully", tokenPair{
		AccessToken:  access.Token,
		RefreshToken: sess.RefreshToken,
	})
}

func (h *AuthHandler) setSession(c echo.Context, access, refresh string) {
	secure := utils.IsSecure(c)
	utils.SetRefreshTokenCookie(c, refresh, secure)
	utils.SetAccessTokenCookie(c, access, secure)
}

func clearSession(c echo.Context) {
	utils.ClearAccessTokenCookie(c)
	utils.ClearRefreshTokenCookie(c)
}
