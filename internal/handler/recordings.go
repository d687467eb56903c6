package handlers

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/insidejustjoin/justjoin-sub002/internal/models"
	"github.com/insidejustjoin/justjoin-sub002/pkg/config"
	"github.com/insidejustjoin/justjoin-sub002/pkg/errors"
	"github.com/insidejustjoin/justjoin-sub002/pkg/response"
)

// handleUploadRecording accepts one media segment as multipart form data.
// Once the blob itself is stored, metadata persistence failures are logged
// but the request still succeeds: the client fires these uploads without
// awaiting them and must never see the interview fail because of one.
func (h *Handlers) handleUploadRecording(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	kind := c.PostForm("type")
	if sessionID == "" || (kind != models.SegmentVideo && kind != models.SegmentAudio) {
		response.FromError(c, errors.WithCode(errors.CodeValidation, "sessionId and type (video|audio) are required"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.FromError(c, errors.WithCode(errors.CodeValidation, "file is required"))
		return
	}
	if maxBytes := config.GlobalConfig.MaxUploadMB << 20; file.Size > maxBytes {
		response.FromError(c, errors.WithCodef(errors.CodeValidation, "file exceeds %dMB limit", config.GlobalConfig.MaxUploadMB))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.FromError(c, errors.WithCode(errors.CodeUpload, "could not read upload"))
		return
	}
	defer src.Close()

	mimetype := file.Header.Get("Content-Type")
	filename := uuid.NewString() + filepath.Ext(file.Filename)
	key := sessionID + "/" + kind + "/" + filename

	if err := h.store.Write(key, src, file.Size, mimetype); err != nil {
		response.FromError(c, errors.WithCode(errors.CodeUpload, "recording storage failed"))
		return
	}

	h.interview.SaveRecordingInfo(c.Request.Context(), sessionID, kind, filename, file.Size, mimetype)

	response.Success(c, "recording stored", gin.H{
		"sessionId": sessionID,
		"type":      kind,
		"filename":  filename,
		"size":      file.Size,
	})
}
