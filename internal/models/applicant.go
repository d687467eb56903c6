package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Applicant is the identity an interview session hangs off. Looked up by
// email at session start; anonymous applicants get a generated address so
// answers and recordings still reconcile to one row.
type Applicant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255"`
	Position  string    `json:"position" gorm:"size:255"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// GetOrCreateApplicant finds the applicant by email or creates one. An
// empty email yields a fresh anonymous applicant.
func GetOrCreateApplicant(db *gorm.DB, email, name, position string) (*Applicant, error) {
	if email == "" {
		a := &Applicant{
			ID:       uuid.NewString(),
			Email:    "anonymous-" + uuid.NewString()[:8] + "@interview.local",
			Name:     name,
			Position: position,
		}
		if err := db.Create(a).Error; err != nil {
			return nil, err
		}
		return a, nil
	}

	var existing Applicant
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	a := &Applicant{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Position: position,
	}
	if err := db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetApplicant fetches one applicant row.
func GetApplicant(db *gorm.DB, id string) (*Applicant, error) {
	var a Applicant
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
