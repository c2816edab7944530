package routes

import (
	"database/sql"

	"rollcall_backend/attendance"
	"rollcall_backend/handlers"
	"rollcall_backend/middleware"
	"rollcall_backend/tokens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, db *sql.DB, jwtSecret []byte, issuer *tokens.Issuer, validator *attendance.Validator, audit *attendance.Audit, logger *zap.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, jwtSecret, logger)
	healthHandler := handlers.NewHealthHandler(db)
	courseHandler := handlers.NewCourseHandler(db, logger)
	sessionHandler := handlers.NewSessionHandler(db, logger)
	tokenHandler := handlers.NewTokenHandler(issuer, logger)
	checkinHandler := handlers.NewCheckinHandler(validator, logger)
	attendanceHandler := handlers.NewAttendanceHandler(db, audit, logger)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(db, jwtSecret, logger))
	{
		// Course routes
		protected.GET("/courses", courseHandler.GetCourses)

		// Check-in route: students scan the displayed QR token
		protected.POST("/attendance/checkin", checkinHandler.Checkin)

		// Logout route
		protected.POST("/logout", authHandler.Logout)

		// Faculty routes
		faculty := protected.Group("/")
		faculty.Use(middleware.RequireRole("faculty", "admin"))
		{
			faculty.POST("/courses", courseHandler.CreateCourse)

			// Class session routes
			faculty.POST("/sessions", sessionHandler.CreateSession)
			faculty.GET("/sessions", sessionHandler.GetSessions)

			// QR token routes
			faculty.GET("/sessions/:id/token", tokenHandler.GetSessionToken)
			faculty.POST("/sessions/:id/token/rotate", tokenHandler.RotateSessionToken)

			// Attendance roster and correction routes
			faculty.GET("/sessions/:id/attendance", attendanceHandler.GetSessionAttendance)
			faculty.PUT("/attendance/:id", attendanceHandler.UpdateAttendance)
		}
	}
}
