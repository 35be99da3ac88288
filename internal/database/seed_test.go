package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeedCourses(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{
			name:  "valid",
			input: `[{"coursename":"Go Basics","price":19.99,"aboutcourse":"intro","category":"programming","level":"beginner","popularity":4}]`,
			want:  1,
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  0,
		},
		{
			name:    "missing name",
			input:   `[{"coursename":"  ","price":10}]`,
			wantErr: "coursename is required",
		},
		{
			name:    "negative price",
			input:   `[{"coursename":"SQL","price":-1}]`,
			wantErr: "price must not be negative",
		},
		{
			name:    "not an array",
			input:   `{"coursename":"SQL"}`,
			wantErr: "failed to decode seed file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := ReadSeedCourses(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, courses, tt.want)
		})
	}
}
