package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is one response to one question within one session. Rows are
// append-only; the (session, question) unique index backs the
// one-submission-per-turn guarantee server-side.
type Answer struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	QuestionID     uint      `json:"questionId" gorm:"uniqueIndex:idx_session_question"`
	SessionID      string    `json:"sessionId" gorm:"size:36;uniqueIndex:idx_session_question"`
	ApplicantID    string    `json:"applicantId" gorm:"size:36;index"`
	Text           string    `json:"text" gorm:"size:4096"`
	ResponseTime   float64   `json:"responseTime"` // seconds from question asked to transcript ready
	WordCount      int       `json:"wordCount"`
	SentimentScore *float64  `json:"sentimentScore,omitempty"`
	Timestamp      time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

// CreateAnswer appends one answer row.
func CreateAnswer(db *gorm.DB, a *Answer) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return db.Create(a).Error
}

// AnswerExists reports whether the session already answered the question.
func AnswerExists(db *gorm.DB, sessionID string, questionID uint) (bool, error) {
	var n int64
	err := db.Model(&Answer{}).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Count(&n).Error
	return n > 0, err
}

// CountAnswersBySession returns how many answers the session has persisted.
func CountAnswersBySession(db *gorm.DB, sessionID string) (int64, error) {
	var n int64
	err := db.Model(&Answer{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

// ListAnswersBySession returns the session's answers in submission order.
func ListAnswersBySession(db *gorm.DB, sessionID string) ([]Answer, error) {
	var answers []Answer
	err := db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&answers).Error
	return answers, err
}
