// Package catalog is the question progression service: a pure, cached
// lookup over the fixed ordered question catalog. The catalog never
// changes at runtime, so cache entries only expire, never invalidate.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/insidejustjoin/justjoin-sub002/internal/models"
	"github.com/insidejustjoin/justjoin-sub002/pkg/cache"
	"github.com/insidejustjoin/justjoin-sub002/pkg/errors"
)

const cacheTTL = 15 * time.Minute

type Service struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewService(db *gorm.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.NewGoCache(cache.LocalConfig{DefaultExpiration: cacheTTL})
	}
	return &Service{db: db, cache: c}
}

// Cached values are stored as JSON strings: the redis backend round-trips
// everything through JSON, so typed values would come back as generic maps.
// Strings survive both backends unchanged.
func (s *Service) cachedQuestion(ctx context.Context, key string) (*models.Question, bool) {
	v, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	raw, ok := v.(string)
	if !ok {
		return nil, false
	}
	var q models.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, false
	}
	return &q, true
}

func (s *Service) storeQuestion(ctx context.Context, key string, q *models.Question) {
	if data, err := json.Marshal(q); err == nil {
		_ = s.cache.Set(ctx, key, string(data), cacheTTL)
	}
}

// GetByID returns the catalog entry or QUESTION_NOT_FOUND.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	key := fmt.Sprintf("question:id:%d", id)
	if q, ok := s.cachedQuestion(ctx, key); ok {
		return q, nil
	}

	q, err := models.GetQuestion(s.db, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeQuestionNotFound, "question %d not found", id)
		}
		return nil, errors.Wrap(err, "question lookup failed")
	}
	s.storeQuestion(ctx, key, q)
	return q, nil
}

// GetNext returns the entry whose order is one greater than the given
// question's, or nil when the given question is the last one.
func (s *Service) GetNext(ctx context.Context, id uint) (*models.Question, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("question:order:%d", current.SortOrder+1)
	if q, ok := s.cachedQuestion(ctx, key); ok {
		return q, nil
	}

	next, err := models.GetQuestionByOrder(s.db, current.SortOrder+1)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "next question lookup failed")
	}
	s.storeQuestion(ctx, key, next)
	return next, nil
}

// First returns the opening question of the sequence.
func (s *Service) First(ctx context.Context) (*models.Question, error) {
	q, err := models.GetQuestionByOrder(s.db, 1)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCode(errors.CodeQuestionNotFound, "question catalog is empty")
		}
		return nil, errors.Wrap(err, "first question lookup failed")
	}
	return q, nil
}

// TotalCount returns the catalog size.
func (s *Service) TotalCount(ctx context.Context) (int, error) {
	if v, ok := s.cache.Get(ctx, "question:count"); ok {
		if raw, ok := v.(string); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				return n, nil
			}
		}
	}
	n, err := models.CountQuestions(s.db)
	if err != nil {
		return 0, errors.Wrap(err, "question count failed")
	}
	_ = s.cache.Set(ctx, "question:count", strconv.Itoa(int(n)), cacheTTL)
	return int(n), nil
}

// List returns the full catalog in sequence order.
func (s *Service) List(ctx context.Context) ([]models.Question, error) {
	return models.ListQuestions(s.db)
}
