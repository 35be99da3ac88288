package testutil

import (
	"context"
	"sync"

	"github.com/redmonkez12/learnhub-api/internal/course"
)

// MemoryCourseStore is a read-only catalog for tests.
type MemoryCourseStore struct {
	mu      sync.RWMutex
	courses map[int64]*course.Course
	Err     error
}

func NewMemoryCourseStore(courses ...course.Course) *MemoryCourseStore {
	s := &MemoryCourseStore{courses: make(map[int64]*course.Course)}
	for i := range courses {
		s.Put(courses[i])
	}
	return s
}

// Put adds or replaces a course.
func (s *MemoryCourseStore) Put(c course.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = &c
}

func (s *MemoryCourseStore) GetByID(ctx context.Context, id int64) (*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	c, ok := s.courses[id]
	if !ok {
		return nil, course.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
