package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"netportal/internal/auth"
	"netportal/internal/config"
	"netportal/internal/handler"
)

// Register wires routes and middleware. Admin login stays outside the admin
// group so it is reachable without a token; everything else under /users and
// /admin sits behind the JWT middleware plus a role guard.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/admin/login", adminHandler.Login)

	jwtMiddleware := auth.Middleware(cfg.JWTSecret)

	api.GET("/auth/profile", authHandler.Profile, jwtMiddleware, auth.RequireRole(auth.RoleUser))

	users := api.Group("/users", jwtMiddleware, auth.RequireRole(auth.RoleUser))
	users.GET("/connections", userHandler.Connections)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.PUT("/password", userHandler.ChangePassword)
	users.POST("/connect", userHandler.Connect)
	users.POST("/disconnect", userHandler.Disconnect)

	admin := api.Group("/admin", jwtMiddleware, auth.RequireRole(auth.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.Users)
	admin.GET("/export/users", adminHandler.ExportUsers)
	admin.GET("/export/connections", adminHandler.ExportConnections)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
