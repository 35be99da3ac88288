package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/learnhub-api/internal/database"
)

var ErrNotFound = errors.New("course not found")

// Repository reads the course catalog.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a course by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	dbCourse := new(database.Course)
	err := r.db.NewSelect().
		Model(dbCourse).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &Course{
		ID:          dbCourse.ID,
		CourseName:  dbCourse.CourseName,
		Price:       dbCourse.Price,
		AboutCourse: dbCourse.AboutCourse,
		Category:    dbCourse.Category,
		Level:       dbCourse.Level,
		Popularity:  dbCourse.Popularity,
	}, nil
}
