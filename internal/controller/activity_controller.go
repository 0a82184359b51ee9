package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/service"
)

type ActivityController struct {
	activity service.ActivityService
}

func NewActivityController(activity service.ActivityService) *ActivityController {
	return &ActivityController{activity: activity}
}

// Recent handles GET /activity
func (ac *ActivityController) Recent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"counts": ac.activity.Counts(),
		"recent": ac.activity.Recent(limit),
	})
}
