package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/repository"
	"lingotrail-backend/internal/service"
)

type TrailController struct {
	sequencer   service.SequencerService
	contentRepo repository.ContentRepository
}

func NewTrailController(sequencer service.SequencerService, contentRepo repository.ContentRepository) *TrailController {
	return &TrailController{sequencer: sequencer, contentRepo: contentRepo}
}

// GetCategories handles GET /categories
func (tc *TrailController) GetCategories(c *gin.Context) {
	categories, err := tc.contentRepo.GetCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListSteps handles GET /categories/:id/steps
func (tc *TrailController) ListSteps(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	steps, err := tc.sequencer.ListSteps(categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, steps)
}

// InsertStep handles POST /categories/:id/steps
func (tc *TrailController) InsertStep(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Position int               `json:"position"`
		Draft    service.StepDraft `json:"draft"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	step, err := tc.sequencer.InsertStepAt(categoryID, body.Position, body.Draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

// ReorderAfter handles POST /categories/:id/steps/reorder_after
func (tc *TrailController) ReorderAfter(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		AfterStepID uint              `json:"after_step_id"`
		Draft       service.StepDraft `json:"draft"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	step, err := tc.sequencer.ReorderAfter(categoryID, body.AfterStepID, body.Draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

// ReplaceExercise handles PUT /steps/:id/exercise
func (tc *TrailController) ReplaceExercise(c *gin.Context) {
	stepID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var draft service.ExerciseDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	exercise, err := tc.sequencer.ReplaceExercise(stepID, draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// RemoveStep handles DELETE /steps/:id
func (tc *TrailController) RemoveStep(c *gin.Context) {
	stepID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := tc.sequencer.RemoveStep(stepID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "step removed"})
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}
