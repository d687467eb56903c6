package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interview session statuses. Once a session reaches completed or
// cancelled it accepts no further answers.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// InterviewSession is one interview attempt. The row is the canonical
// source of truth; client phase state is only a projection of it.
type InterviewSession struct {
	ID                   string            `json:"id" gorm:"primaryKey;size:36"`
	ApplicantID          string            `json:"applicantId" gorm:"size:36;index"`
	Status               string            `json:"status" gorm:"size:20;index"`
	Language             string            `json:"language" gorm:"size:8"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	ConsentGiven         bool              `json:"consentGiven"`
	StartedAt            time.Time         `json:"startedAt"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
	TotalDuration        int               `json:"totalDuration"` // seconds
	IPAddress            string            `json:"ipAddress" gorm:"size:64"`
	UserAgent            string            `json:"userAgent" gorm:"size:512"`
	Metadata             map[string]string `json:"metadata" gorm:"serializer:json"`
	CreatedAt            time.Time         `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt            time.Time         `json:"updatedAt" gorm:"autoUpdateTime"`
}

// IsTerminal reports whether the session accepts no further answers.
func (s *InterviewSession) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// CreateInterviewSession inserts a new session in waiting status.
func CreateInterviewSession(db *gorm.DB, applicantID, language, ip, userAgent string, metadata map[string]string) (*InterviewSession, error) {
	s := &InterviewSession{
		ID:           uuid.NewString(),
		ApplicantID:  applicantID,
		Status:       StatusWaiting,
		Language:     language,
		ConsentGiven: true,
		StartedAt:    time.Now(),
		IPAddress:    ip,
		UserAgent:    userAgent,
		Metadata:     metadata,
	}
	if err := db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetInterviewSession fetches one session row.
func GetInterviewSession(db *gorm.DB, id string) (*InterviewSession, error) {
	var s InterviewSession
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveInterviewSession persists all mutated fields of the session row.
func SaveInterviewSession(db *gorm.DB, s *InterviewSession) error {
	return db.Save(s).Error
}

// FinishInterviewSession moves the session to a terminal status and stamps
// duration. No-op when the session is already terminal.
func FinishInterviewSession(db *gorm.DB, s *InterviewSession, status string) error {
	if s.IsTerminal() {
		return nil
	}
	now := time.Now()
	s.Status = status
	s.CompletedAt = &now
	s.TotalDuration = int(now.Sub(s.StartedAt).Seconds())
	return db.Save(s).Error
}
