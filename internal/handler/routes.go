package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/insidejustjoin/justjoin-sub002/internal/catalog"
	"github.com/insidejustjoin/justjoin-sub002/internal/interview"
	"github.com/insidejustjoin/justjoin-sub002/pkg/config"
	"github.com/insidejustjoin/justjoin-sub002/pkg/middleware"
	stores "github.com/insidejustjoin/justjoin-sub002/pkg/storage"
)

type Handlers struct {
	db        *gorm.DB
	interview *interview.Service
	catalog   *catalog.Service
	store     stores.Store
}

func NewHandlers(db *gorm.DB, svc *interview.Service, cat *catalog.Service, store stores.Store) *Handlers {
	return &Handlers{
		db:        db,
		interview: svc,
		catalog:   cat,
		store:     store,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	cfg := config.GlobalConfig

	r := engine.Group(cfg.APIPrefix)
	r.Use(middleware.LanguageMiddleware(cfg.DefaultLanguage))

	r.POST("/start", h.handleStart)
	r.POST("/answer", h.handleSubmitAnswer)
	r.GET("/session/:id", h.handleGetSession)
	r.POST("/end", h.handleEndSession)
	r.GET("/questions", h.handleListQuestions)

	upload := r.Group("")
	upload.Use(middleware.RateLimiter(cfg.UploadRate))
	upload.POST("/upload-recording", h.handleUploadRecording)

	r.GET("/health", h.HealthCheck)
}
