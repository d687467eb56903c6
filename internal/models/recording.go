package models

import (
	"time"

	"gorm.io/gorm"
)

// Recording segment kinds.
const (
	SegmentVideo = "video"
	SegmentAudio = "audio"
)

// RecordingSegment is one uploaded media blob. Segments accumulate per
// session and are linked to the session, not to individual turns.
type RecordingSegment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SessionID   string    `json:"sessionId" gorm:"size:36;index"`
	ApplicantID string    `json:"applicantId" gorm:"size:36"`
	Type        string    `json:"type" gorm:"size:10"`
	Filename    string    `json:"filename" gorm:"size:255"`
	Filesize    int64     `json:"filesize"`
	Mimetype    string    `json:"mimetype" gorm:"size:100"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
}

// CreateRecordingSegment inserts one segment row.
func CreateRecordingSegment(db *gorm.DB, seg *RecordingSegment) error {
	return db.Create(seg).Error
}

// ListRecordingsBySession returns the session's segments by upload time.
// Upload order does not necessarily match question order.
func ListRecordingsBySession(db *gorm.DB, sessionID string) ([]RecordingSegment, error) {
	var segs []RecordingSegment
	err := db.Where("session_id = ?", sessionID).Order("uploaded_at asc").Find(&segs).Error
	return segs, err
}
