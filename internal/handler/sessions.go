package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/insidejustjoin/justjoin-sub002/internal/interview"
	"github.com/insidejustjoin/justjoin-sub002/pkg/errors"
	"github.com/insidejustjoin/justjoin-sub002/pkg/middleware"
	"github.com/insidejustjoin/justjoin-sub002/pkg/response"
)

type startRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	Position     string `json:"position"`
	ConsentGiven bool   `json:"consentGiven"`
}

func (h *Handlers) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, errors.WithCode(errors.CodeValidation, err.Error()))
		return
	}
	if req.Language == "" {
		req.Language = middleware.RequestLanguage(c)
	}

	res, err := h.interview.Start(c.Request.Context(), interview.StartInput{
		Email:        req.Email,
		Name:         req.Name,
		Language:     req.Language,
		Position:     req.Position,
		ConsentGiven: req.ConsentGiven,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "interview started", res)
}

type answerRequest struct {
	SessionID    string  `json:"sessionId"`
	QuestionID   uint    `json:"questionId"`
	Text         string  `json:"text"`
	ResponseTime float64 `json:"responseTime"`
}

func (h *Handlers) handleSubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, errors.WithCode(errors.CodeValidation, err.Error()))
		return
	}

	res, err := h.interview.SubmitAnswer(c.Request.Context(), req.SessionID, req.QuestionID, req.Text, req.ResponseTime)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "answer accepted", res)
}

func (h *Handlers) handleGetSession(c *gin.Context) {
	snap, err := h.interview.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "session", snap)
}

type endRequest struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

func (h *Handlers) handleEndSession(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, errors.WithCode(errors.CodeValidation, err.Error()))
		return
	}

	res, err := h.interview.End(c.Request.Context(), req.SessionID, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "interview ended", res)
}
