package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"netportal/internal/service"
)

const exportDateLayout = "2006-01-02"

// AdminHandler handles the admin console endpoints.
type AdminHandler struct {
	authService  service.AuthService
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(authService service.AuthService, adminService service.AdminService) *AdminHandler {
	return &AdminHandler{authService: authService, adminService: adminService}
}

// AdminLoginRequest represents an admin login request.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login godoc
// @Summary Admin console login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, admin, err := h.authService.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "admin login successful",
		"admin":   admin,
		"token":   token,
	})
}

// Dashboard godoc
// @Summary Dashboard statistics and recent connections
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, recent, err := h.adminService.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":           true,
		"stats":             stats,
		"recentConnections": recent,
	})
}

// Users godoc
// @Summary Paginated user listing with connection aggregates
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Match email, full name or company"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	search := c.QueryParam("search")

	users, pagination, err := h.adminService.Users(c.Request().Context(), page, limit, search)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"users":      users,
		"pagination": pagination,
	})
}

// ExportUsers godoc
// @Summary Export users as CSV
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV data"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/export/users [get]
func (h *AdminHandler) ExportUsers(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=users_export.csv`)
	c.Response().WriteHeader(http.StatusOK)
	return h.adminService.ExportUsersCSV(c.Request().Context(), c.Response())
}

// ExportConnections godoc
// @Summary Export connection logs as CSV
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Success 200 {string} string "CSV data"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/export/connections [get]
func (h *AdminHandler) ExportConnections(c echo.Context) error {
	var start, end *time.Time
	if s, e := c.QueryParam("startDate"), c.QueryParam("endDate"); s != "" && e != "" {
		parsedStart, err := time.Parse(exportDateLayout, s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
		}
		parsedEnd, err := time.Parse(exportDateLayout, e)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
		}
		// include the whole end day
		parsedEnd = parsedEnd.Add(24*time.Hour - time.Nanosecond)
		start, end = &parsedStart, &parsedEnd
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=connections_export.csv`)
	c.Response().WriteHeader(http.StatusOK)
	return h.adminService.ExportConnectionsCSV(c.Request().Context(), start, end, c.Response())
}
