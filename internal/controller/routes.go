package controller

import (
	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/repository"
	"lingotrail-backend/internal/service"
)

func RegisterRoutes(
	r *gin.Engine,
	authService service.AuthService,
	userService service.UserService,
	sequencer service.SequencerService,
	sessions service.SessionService,
	progress service.ProgressService,
	reports service.ReportService,
	activity service.ActivityService,
	contentRepo repository.ContentRepository,
) {
	// Auth routes.
	authCtrl := NewAuthController(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		authRoutes.POST("/login", authCtrl.Login)
		authRoutes.POST("/refresh", authCtrl.Refresh)
	}

	// User routes.
	userCtrl := NewUserController(userService)
	r.GET("/user", userCtrl.GetAllUsers)

	// Trail routes.
	trailCtrl := NewTrailController(sequencer, contentRepo)
	r.GET("/categories", trailCtrl.GetCategories)
	categoryRoutes := r.Group("/categories/:id")
	{
		categoryRoutes.GET("/steps", trailCtrl.ListSteps)
		categoryRoutes.POST("/steps", trailCtrl.InsertStep)
		categoryRoutes.POST("/steps/reorder_after", trailCtrl.ReorderAfter)
	}
	r.PUT("/steps/:id/exercise", trailCtrl.ReplaceExercise)
	r.DELETE("/steps/:id", trailCtrl.RemoveStep)

	// Session routes.
	sessionCtrl := NewSessionController(sessions)
	sessionRoutes := r.Group("/sessions")
	{
		sessionRoutes.POST("", sessionCtrl.Open)
		sessionRoutes.GET("/:session_id", sessionCtrl.Get)
		sessionRoutes.GET("/:session_id/answers", sessionCtrl.Answers)
		sessionRoutes.POST("/:session_id/answers", sessionCtrl.SubmitAnswer)
		sessionRoutes.POST("/:session_id/complete", sessionCtrl.Complete)
		sessionRoutes.POST("/:session_id/abandon", sessionCtrl.Abandon)
	}

	// Activity feed.
	activityCtrl := NewActivityController(activity)
	r.GET("/activity", activityCtrl.Recent)

	// Progress routes.
	progressCtrl := NewProgressController(progress, reports)
	progressRoutes := r.Group("/progress")
	{
		progressRoutes.GET("", progressCtrl.GetProgress)
		progressRoutes.GET("/overview", progressCtrl.GetOverview)
		progressRoutes.GET("/report", progressCtrl.DownloadReport)
	}
}
