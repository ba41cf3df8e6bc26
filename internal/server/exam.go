package server

import (
	"net/http"
	"time"

	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type examSessionResponse struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	Score          *int    `json:"score,omitempty"`
	EstimatedLevel *string `json:"estimated_level,omitempty"`
	ResultHash     *string `json:"result_hash,omitempty"`
	CreatedAt      string  `json:"created_at"`
	CompletedAt    *string `json:"completed_at,omitempty"`
}

func toExamSessionResponse(session *examdomain.ExamSession) examSessionResponse {
	resp := examSessionResponse{
		ID:             session.ID.String(),
		Status:         string(session.Status),
		Score:          session.Score,
		EstimatedLevel: session.EstimatedLevel,
		ResultHash:     session.ResultHash,
		CreatedAt:      session.CreatedAt.UTC().Format(time.RFC3339),
	}
	if session.CompletedAt != nil {
		completed := session.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}

func (s *Server) StartExam(c *gin.Context) {
	userID, ok := currentUserID(c)
	orgID, okOrg := currentOrgID(c)
	if !ok || !okOrg {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	session, err := s.examSvc.Start(c.Request.Context(), userID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": toExamSessionResponse(session)})
}

func (s *Server) BeginExam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	sessionID, err := snowflake.ParseString(c.Param("sessionId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	session, err := s.examSvc.Begin(c.Request.Context(), sessionID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toExamSessionResponse(session)})
}

type completeExamRequest struct {
	Answers []struct {
		QuestionID string `json:"question_id"`
		Correct    bool   `json:"correct"`
	} `json:"answers" binding:"required"`
}

func (s *Server) CompleteExam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	sessionID, err := snowflake.ParseString(c.Param("sessionId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req completeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	answers := make([]examdomain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, examdomain.Answer{
			QuestionID: a.QuestionID,
			Correct:    a.Correct,
		})
	}

	session, err := s.examSvc.Complete(c.Request.Context(), sessionID, userID, answers)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toExamSessionResponse(session)})
}

func (s *Server) GetExamSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	sessionID, err := snowflake.ParseString(c.Param("sessionId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	session, err := s.examSvc.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toExamSessionResponse(session)})
}
