package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/service"
)

type ProgressController struct {
	progress service.ProgressService
	reports  service.ReportService
}

func NewProgressController(progress service.ProgressService, reports service.ReportService) *ProgressController {
	return &ProgressController{progress: progress, reports: reports}
}

// GetProgress handles GET /progress and GET /progress?category_id=N
func (pc *ProgressController) GetProgress(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		entries, err := pc.progress.GetUserProgressByCategory(uid, uint(categoryID))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	rows, err := pc.progress.GetUserProgress(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetOverview handles GET /progress/overview
func (pc *ProgressController) GetOverview(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	overview, err := pc.progress.Overview(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// DownloadReport handles GET /progress/report
func (pc *ProgressController) DownloadReport(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	pdfBytes, err := pc.reports.GenerateProgressReport(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="progress_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
