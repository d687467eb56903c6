package models

import "gorm.io/gorm"

// Migrate creates or updates every table the interview service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Applicant{},
		&InterviewSession{},
		&Question{},
		&Answer{},
		&RecordingSegment{},
	)
}
