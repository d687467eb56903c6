package models

import (
	"time"

	"gorm.io/gorm"
)

// Question is an immutable catalog entry. SortOrder is 1-based and defines
// the fixed global sequence; Texts maps language tag to question text.
type Question struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	SortOrder int               `json:"order" gorm:"column:sort_order;uniqueIndex"`
	Texts     map[string]string `json:"texts" gorm:"serializer:json"`
	CreatedAt time.Time         `json:"createdAt" gorm:"autoCreateTime"`
}

// Text returns the question text for lang, falling back to Japanese then
// to any available translation.
func (q *Question) Text(lang string) string {
	if t, ok := q.Texts[lang]; ok && t != "" {
		return t
	}
	if t, ok := q.Texts["ja"]; ok && t != "" {
		return t
	}
	for _, t := range q.Texts {
		if t != "" {
			return t
		}
	}
	return ""
}

// GetQuestion fetches one catalog entry.
func GetQuestion(db *gorm.DB, id uint) (*Question, error) {
	var q Question
	if err := db.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQuestionByOrder fetches the entry at the given 1-based position.
func GetQuestionByOrder(db *gorm.DB, order int) (*Question, error) {
	var q Question
	if err := db.Where("sort_order = ?", order).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns the whole catalog in sequence order.
func ListQuestions(db *gorm.DB) ([]Question, error) {
	var qs []Question
	if err := db.Order("sort_order asc").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

// CountQuestions returns the catalog size.
func CountQuestions(db *gorm.DB) (int64, error) {
	var n int64
	if err := db.Model(&Question{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// SeedQuestions inserts the default catalog when the table is empty.
func SeedQuestions(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Question{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return db.Create(defaultCatalog()).Error
}

func defaultCatalog() []Question {
	entries := []struct{ en, ja string }{
		{"Please introduce yourself briefly.", "簡単に自己紹介をお願いします。"},
		{"Why did you apply for this position?", "このポジションに応募した理由を教えてください。"},
		{"Tell us about your most significant professional achievement.", "これまでで最も大きな仕事上の成果について教えてください。"},
		{"Describe a difficult problem you solved and how you approached it.", "困難な課題をどのように解決したか教えてください。"},
		{"How do you keep your skills up to date?", "スキルをどのように磨き続けていますか。"},
		{"Tell us about a time you worked in a team under pressure.", "プレッシャーの中でチームとして働いた経験を教えてください。"},
		{"What kind of work environment helps you perform best?", "最も力を発揮できる職場環境はどのようなものですか。"},
		{"Where do you see your career in five years?", "5年後のキャリアをどのように考えていますか。"},
		{"What questions do you have about the company or the role?", "会社や職務について質問はありますか。"},
		{"Is there anything else you would like us to know?", "最後に伝えておきたいことがあれば教えてください。"},
	}
	qs := make([]Question, 0, len(entries))
	for i, e := range entries {
		qs = append(qs, Question{
			SortOrder: i + 1,
			Texts:     map[string]string{"en": e.en, "ja": e.ja},
		})
	}
	return qs
}
