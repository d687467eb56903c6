package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/insidejustjoin/justjoin-sub002/internal/interview"
	"github.com/insidejustjoin/justjoin-sub002/pkg/middleware"
	"github.com/insidejustjoin/justjoin-sub002/pkg/response"
)

// handleListQuestions returns the full catalog localized to the request
// language.
func (h *Handlers) handleListQuestions(c *gin.Context) {
	lang := middleware.RequestLanguage(c)

	qs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	views := make([]interview.QuestionView, 0, len(qs))
	for i := range qs {
		views = append(views, interview.QuestionView{
			ID:    qs[i].ID,
			Order: qs[i].SortOrder,
			Text:  qs[i].Text(lang),
		})
	}
	response.Success(c, "questions", gin.H{"questions": views, "total": len(views), "language": lang})
}
