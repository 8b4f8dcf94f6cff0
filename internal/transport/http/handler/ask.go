package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type AskHandler struct {
	askService *app.AskService
}

type AskRequest struct {
	Question string `json:"question" binding:"required,max=512"`
}

func NewAskHandler(askService *app.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

func (h *AskHandler) Ask(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.askService.Ask(c.Request.Context(), app.AskInput{
		Username: identity.Username,
		Role:     identity.Role,
		Question: req.Question,
	})
	if err != nil {
		var genErr *ai.GenerationError
		switch {
		case errors.Is(err, app.ErrQuestionEmpty), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.As(err, &genErr):
			// Internal detail stays in the logs; the caller gets a generic
			// failure.
			log.Printf("generation failed for %s: %v", identity.Username, genErr)
			response.Error(c, http.StatusInternalServerError, response.CodeGenerationFailed, "error processing your request")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}

	response.OK(c, result)
}

// History lists the requester's recorded interactions, newest first.
func (h *AskHandler) History(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			limit = parsed
		}
	}

	interactions, err := h.askService.History(identity.Username, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list history failed")
		return
	}

	views := make([]gin.H, 0, len(interactions))
	for _, interaction := range interactions {
		views = append(views, gin.H{
			"question":       interaction.Question,
			"answer":         interaction.Answer,
			"documents_used": interaction.Filenames(),
			"created_at":     interaction.CreatedAt,
		})
	}
	response.OK(c, views)
}
