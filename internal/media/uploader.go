package media

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
)

// Uploader ships finished blobs to the recording endpoint. Fire and
// forget: zero retries, failures are logged and the interview proceeds.
type Uploader struct {
	endpoint string
	client   *http.Client
}

func NewUploader(endpoint string) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// UploadAsync schedules the upload off the turn's critical path.
func (u *Uploader) UploadAsync(blob *Blob, sessionID string) {
	if blob == nil {
		return
	}
	go func() {
		if err := u.upload(blob, sessionID); err != nil {
			logger.Warn("recording upload failed",
				zap.String("session", sessionID),
				zap.String("kind", string(blob.Kind)),
				zap.Int("bytes", len(blob.Data)),
				zap.Error(err))
		}
	}()
}

func (u *Uploader) upload(blob *Blob, sessionID string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("sessionId", sessionID); err != nil {
		return err
	}
	if err := mw.WriteField("type", string(blob.Kind)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", fmt.Sprintf("window-%d.webm", blob.Started.UnixMilli()))
	if err != nil {
		return err
	}
	if _, err := part.Write(blob.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, u.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return nil
}
