package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"netportal/internal/service"
)

// UserHandler handles the authenticated subscriber's own endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents a profile update.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	CompanyName string `json:"companyName"`
}

// ChangePasswordRequest represents a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ConnectRequest represents a manual connection log request.
type ConnectRequest struct {
	IPAddress string `json:"ipAddress"`
}

// DisconnectRequest represents a disconnect notification.
type DisconnectRequest struct {
	SessionDuration *int `json:"sessionDuration"`
}

// Connections godoc
// @Summary List the caller's connection history
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/connections [get]
func (h *UserHandler) Connections(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, pagination, err := h.userService.Connections(c.Request().Context(), claims.ID, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"connections": entries,
		"pagination":  pagination,
	})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), claims.ID, req.FullName, req.PhoneNumber, req.CompanyName)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "profile updated successfully",
		"user":    user,
	})
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), claims.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "password changed successfully",
	})
}

// Connect godoc
// @Summary Log a network connection for the caller
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConnectRequest false "Optional IP override"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/connect [post]
func (h *UserHandler) Connect(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ip := req.IPAddress
	if ip == "" {
		ip = c.RealIP()
	}

	if err := h.userService.Connect(c.Request().Context(), claims.ID, claims.Email, ip); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "connection logged successfully",
	})
}

// Disconnect godoc
// @Summary Close the caller's current session
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DisconnectRequest false "Optional session duration in seconds"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/disconnect [post]
func (h *UserHandler) Disconnect(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req DisconnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.userService.Disconnect(c.Request().Context(), claims.ID, req.SessionDuration); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "disconnection logged successfully",
	})
}
