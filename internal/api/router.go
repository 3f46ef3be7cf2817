package api

import (
	"net/http"

	"fleet-dispatch/internal/api/middleware"
	"fleet-dispatch/internal/modules/orders"
	"fleet-dispatch/internal/modules/users"
	"fleet-dispatch/internal/modules/vehicles"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	userHandler *users.Handler,
	orderHandler *orders.Handler,
	vehicleHandler *vehicles.Handler,
	jwtSecret string,
) {
	// Initialize the JWT authentication middleware
	authMiddleware := middleware.JWTMAuth(jwtSecret)
	// Dispatcher-only routes layer this on top
	dispatcherRequired := middleware.DispatcherRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Fleet Dispatch Platform!"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
		authGroup.GET("/google", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
	}

	// --- Order Routes ---
	// Role checks beyond authentication live in the order service, which
	// decides per action who may perform it.
	orderGroup := e.Group("/orders", authMiddleware)
	{
		orderGroup.POST("", orderHandler.CreateOrder)
		orderGroup.GET("", orderHandler.ListOrders)
		orderGroup.GET("/:orderId", orderHandler.GetOrder)
		orderGroup.PUT("/:orderId", orderHandler.UpdateOrder)
		orderGroup.DELETE("/:orderId", orderHandler.DeleteOrder)
		orderGroup.POST("/:orderId/accept", orderHandler.AcceptOrder)
		orderGroup.POST("/:orderId/cancel", orderHandler.CancelOrder)
		orderGroup.POST("/:orderId/complete", orderHandler.CompleteOrder)
		orderGroup.POST("/:orderId/assign-driver", orderHandler.AssignDriver)
		orderGroup.POST("/:orderId/assign-vehicle", orderHandler.AssignVehicle)
	}

	// --- Driver Routes ---
	driverGroup := e.Group("/drivers", authMiddleware)
	{
		driverGroup.GET("", userHandler.ListDrivers)
		driverGroup.GET("/:driverId", userHandler.GetDriverDetail)
	}

	// --- Fleet Routes ---
	vehicleGroup := e.Group("/vehicles", authMiddleware)
	{
		vehicleGroup.GET("", vehicleHandler.ListVehicles)
		vehicleGroup.GET("/:vehicleId", vehicleHandler.GetVehicle)
		vehicleGroup.POST("", vehicleHandler.RegisterVehicle, dispatcherRequired)
	}
}
