package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/middleware"
	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/service"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// UserService is implemented by *service.UserService.
type UserService interface {
	GetProfile(ctx context.Context, id uint64) (model.Profile, error)
	UpdateProfile(ctx context.Context, id uint64, in service.ProfileInput) (model.Profile, error)
	ChangePassword(ctx context.Context, id uint64, oldPassword, newPassword string) error
}

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	Users UserService
	Log   *zap.Logger
}

func NewUserHandler(users UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Log: log.Named("user")}
}

type updateProfileReq struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,min=1,max=32"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// Me returns the current user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return utils.Failure(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Users.GetProfile(ctx, id)
	if err != nil {
		return respondError(c, h.Log, "get_profile", err, nil)
	}
	return utils.Success(c, http.StatusOK, "Successfully get the user information", p)
}

// UpdateMe changes name, email or phone of the current user.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return utils.Failure(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req updateProfileReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Users.UpdateProfile(ctx, id, service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return respondError(c, h.Log, "update_profile", err, nil)
	}
	return utils.Success(c, http.StatusOK, "Successfully update the user information", p)
}

// ChangePassword replaces the current user's password.  A vanished account
// answers 401 here, like a wrong old password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return utils.Failure(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req changePasswordReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	err := h.Users.ChangePassword(ctx, id, req.OldPassword, req.NewPassword)
	if err != nil {
		return respondError(c, h.Log, "change_password", err, map[error]int{
			service.ErrUserNotFound: http.StatusUnauthorized,
		})
	}
	return utils.Success(c, http.StatusOK, "Password updated successfully", nil)
}
