package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/insidejustjoin/justjoin-sub002/internal/catalog"
	"github.com/insidejustjoin/justjoin-sub002/internal/interview"
	"github.com/insidejustjoin/justjoin-sub002/internal/models"
	"github.com/insidejustjoin/justjoin-sub002/pkg/config"
	"github.com/insidejustjoin/justjoin-sub002/pkg/i18n"
	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	stores "github.com/insidejustjoin/justjoin-sub002/pkg/storage"
	"github.com/insidejustjoin/justjoin-sub002/pkg/util"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{
		APIPrefix:       "/api/interview",
		DefaultLanguage: "ja",
		MaxUploadMB:     10,
		UploadRate:      "100-S",
	}
	require.NoError(t, logger.Init(logger.LogConfig{Level: "error"}))

	db, err := util.OpenDatabase("", "")
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	require.NoError(t, models.SeedQuestions(db))

	loc, err := i18n.NewI18nSupport("ja")
	require.NoError(t, err)

	cat := catalog.NewService(db, nil)
	svc := interview.NewService(db, cat, nil, loc, nil)
	store := stores.NewLocalStore(t.TempDir())

	engine := gin.New()
	NewHandlers(db, svc, cat, store).Register(engine)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func startSession(t *testing.T, engine *gin.Engine) (sessionID string, questionID uint) {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/interview/start", gin.H{
		"email": "hanako@example.com", "name": "Hanako",
		"language": "en", "consentGiven": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	q := data["nextQuestion"].(map[string]interface{})
	return data["sessionId"].(string), uint(q["id"].(float64))
}

func TestStartWithoutConsentReturns400(t *testing.T) {
	engine, db := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/interview/start", gin.H{
		"language": "en", "consentGiven": false,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "CONSENT_REQUIRED", body["error"])

	var n int64
	require.NoError(t, db.Model(&models.InterviewSession{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestAnswerUnknownQuestionReturns404(t *testing.T) {
	engine, _ := newTestRouter(t)
	sessionID, _ := startSession(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/interview/answer", gin.H{
		"sessionId": sessionID, "questionId": 424242, "text": "hello", "responseTime": 2.0,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "QUESTION_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestFullRunOverHTTP(t *testing.T) {
	engine, _ := newTestRouter(t)
	sessionID, questionID := startSession(t, engine)

	for i := 1; i <= 10; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/interview/answer", gin.H{
			"sessionId": sessionID, "questionId": questionID,
			"text": fmt.Sprintf("answer number %d", i), "responseTime": 3.5,
		})
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})

		if i < 10 {
			require.Equal(t, false, data["isComplete"])
			progress := data["progress"].(map[string]interface{})
			require.Equal(t, float64(10), progress["total"])
			questionID = uint(data["nextQuestion"].(map[string]interface{})["id"].(float64))
		} else {
			require.Equal(t, true, data["isComplete"])
			summary := data["summary"].(map[string]interface{})
			require.Equal(t, float64(10), summary["questionsAnswered"])
			require.Equal(t, float64(100), summary["completionRate"])
		}
	}

	// Session snapshot reflects completion.
	w := doJSON(t, engine, http.MethodGet, "/api/interview/session/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	require.Equal(t, models.StatusCompleted, data["status"])
	require.Equal(t, float64(10), data["answeredCount"])
}

func TestEndTwiceOverHTTP(t *testing.T) {
	engine, _ := newTestRouter(t)
	sessionID, _ := startSession(t, engine)

	for i := 0; i < 2; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/interview/end", gin.H{
			"sessionId": sessionID, "reason": "user_left",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestQuestionCatalogLocalized(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/interview/questions?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	require.Equal(t, "en", data["language"])
	require.Equal(t, float64(10), data["total"])
}

func uploadRecording(t *testing.T, engine *gin.Engine, sessionID, kind string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("sessionId", sessionID))
	require.NoError(t, mw.WriteField("type", kind))
	part, err := mw.CreateFormFile("file", "window.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake media bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/interview/upload-recording", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestUploadRecording(t *testing.T) {
	engine, db := newTestRouter(t)
	sessionID, _ := startSession(t, engine)

	w := uploadRecording(t, engine, sessionID, models.SegmentVideo)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	require.Equal(t, models.SegmentVideo, data["type"])

	segs, err := models.ListRecordingsBySession(db, sessionID)
	require.NoError(t, err)
	require.Len(t, segs, 1)
}

func TestUploadRecordingUnknownSessionStillSucceeds(t *testing.T) {
	engine, db := newTestRouter(t)

	w := uploadRecording(t, engine, "ghost-session", models.SegmentAudio)
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.RecordingSegment{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestUploadRecordingBadType(t *testing.T) {
	engine, _ := newTestRouter(t)
	w := uploadRecording(t, engine, "s", "screenshot")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	engine, _ := newTestRouter(t)
	w := doJSON(t, engine, http.MethodGet, "/api/interview/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
