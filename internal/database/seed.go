package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/bun"
)

// SeedCourse is one catalog entry in a seed file.
type SeedCourse struct {
	CourseName  string  `json:"coursename"`
	Price       float64 `json:"price"`
	AboutCourse string  `json:"aboutcourse"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Popularity  int     `json:"popularity"`
}

// ReadSeedCourses decodes a JSON array of courses and rejects entries without a name.
func ReadSeedCourses(r io.Reader) ([]SeedCourse, error) {
	var courses []SeedCourse
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	for i, c := range courses {
		if strings.TrimSpace(c.CourseName) == "" {
			return nil, fmt.Errorf("course %d: coursename is required", i)
		}
		if c.Price < 0 {
			return nil, fmt.Errorf("course %d: price must not be negative", i)
		}
	}

	return courses, nil
}

// SeedCourses inserts the given courses in one transaction and returns the new ids.
func SeedCourses(ctx context.Context, db *bun.DB, courses []SeedCourse) ([]int64, error) {
	if len(courses) == 0 {
		return nil, nil
	}

	rows := make([]Course, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, Course{
			CourseName:  strings.TrimSpace(c.CourseName),
			Price:       c.Price,
			AboutCourse: c.AboutCourse,
			Category:    c.Category,
			Level:       c.Level,
			Popularity:  c.Popularity,
		})
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert courses: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
