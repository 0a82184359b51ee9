package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/service"
)

type SessionController struct {
	sessions service.SessionService
}

func NewSessionController(sessions service.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// Open handles POST /sessions
func (sc *SessionController) Open(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		ExerciseID uint `json:"exercise_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := sc.sessions.OpenSession(uid, body.ExerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Get handles GET /sessions/:session_id — serves the attempt view while the
// session is live; a stale in_progress session is observed as abandoned here.
func (sc *SessionController) Get(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	session, view, err := sc.sessions.GetSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if session.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	resp := gin.H{"session": session}
	if view != nil {
		resp["instructions"] = view.Instructions
		resp["items"] = view.Items
	}
	c.JSON(http.StatusOK, resp)
}

// Answers handles GET /sessions/:session_id/answers — the answer log for
// review.
func (sc *SessionController) Answers(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	if !sc.ownsSession(c, uid) {
		return
	}
	answers, err := sc.sessions.GetAnswers(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

// SubmitAnswer handles POST /sessions/:session_id/answers
func (sc *SessionController) SubmitAnswer(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		ItemID           uint   `json:"item_id"`
		Answer           string `json:"answer"`
		TimeSpentSeconds int    `json:"time_spent_seconds"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !sc.ownsSession(c, uid) {
		return
	}
	answer, session, err := sc.sessions.SubmitAnswer(c.Param("session_id"), body.ItemID, body.Answer, body.TimeSpentSeconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"correct": answer.IsCorrect,
		"score":   session.Score,
	})
}

// Complete handles POST /sessions/:session_id/complete
func (sc *SessionController) Complete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	if !sc.ownsSession(c, uid) {
		return
	}
	session, progress, err := sc.sessions.CompleteSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"progress": progress,
	})
}

// Abandon handles POST /sessions/:session_id/abandon
func (sc *SessionController) Abandon(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	if !sc.ownsSession(c, uid) {
		return
	}
	session, err := sc.sessions.AbandonSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ownsSession rejects attempts to touch another user's session without
// leaking its existence. Reads the bare row; the stateful handling is left to
// the operation itself.
func (sc *SessionController) ownsSession(c *gin.Context, uid uint) bool {
	session, err := sc.sessions.PeekSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return false
	}
	if session.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return false
	}
	return true
}
