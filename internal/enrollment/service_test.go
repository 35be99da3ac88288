package enrollment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/course"
	"github.com/redmonkez12/learnhub-api/internal/testutil"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

var goCourse = course.Course{
	ID:          5,
	CourseName:  "Go for Backend Engineers",
	Price:       49.99,
	AboutCourse: "Services, concurrency and testing",
	Category:    "programming",
	Level:       "intermediate",
	Popularity:  87,
}

type serviceFixture struct {
	users   *testutil.MemoryUserStore
	courses *testutil.MemoryCourseStore
	mailer  *testutil.RecordingMailer
	service *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		users:   testutil.NewMemoryUserStore(),
		courses: testutil.NewMemoryCourseStore(goCourse),
		mailer:  &testutil.RecordingMailer{},
	}
	f.service = NewService(f.users, f.courses, f.mailer, testutil.NewLogger())
	return f
}

func TestService_Enroll(t *testing.T) {
	f := newServiceFixture()
	u := testutil.CreateTestUser(f.users)

	result, err := f.service.Enroll(context.Background(), u.ID, goCourse.ID)
	require.NoError(t, err)

	require.Len(t, result.User.CoursesEnrolled, 1)
	assert.Equal(t, Snapshot(&goCourse), result.User.CoursesEnrolled[0])
	assert.True(t, result.Notification.Sent)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "enrollment", sent[0].Kind)
	assert.Equal(t, u.Email, sent[0].To)
	assert.Equal(t, goCourse.CourseName, sent[0].Course.CourseName)
}

func TestService_Enroll_Twice(t *testing.T) {
	f := newServiceFixture()
	u := testutil.CreateTestUser(f.users)

	_, err := f.service.Enroll(context.Background(), u.ID, goCourse.ID)
	require.NoError(t, err)

	_, err = f.service.Enroll(context.Background(), u.ID, goCourse.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	courses, err := f.service.ListEnrollments(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Len(t, f.mailer.Sent(), 1)
}

func TestService_Enroll_SnapshotIsDetached(t *testing.T) {
	f := newServiceFixture()
	u := testutil.CreateTestUser(f.users)

	_, err := f.service.Enroll(context.Background(), u.ID, goCourse.ID)
	require.NoError(t, err)

	changed := goCourse
	changed.Price = 99
	changed.CourseName = "Renamed"
	f.courses.Put(changed)

	courses, err := f.service.ListEnrollments(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 49.99, courses[0].Price)
	assert.Equal(t, goCourse.CourseName, courses[0].CourseName)
}

func TestService_Enroll_Errors(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name     string
		userID   func(f *serviceFixture) uuid.UUID
		courseID int64
		prepare  func(f *serviceFixture)
		wantErr  error
		wantKind apperror.Kind
	}{
		{
			name:     "unknown user",
			userID:   func(*serviceFixture) uuid.UUID { return uuid.New() },
			courseID: goCourse.ID,
			wantErr:  ErrUserNotFound,
			wantKind: apperror.KindNotFound,
		},
		{
			name:     "unknown course",
			userID:   func(f *serviceFixture) uuid.UUID { return testutil.CreateTestUser(f.users).ID },
			courseID: 404,
			wantErr:  ErrCourseNotFound,
			wantKind: apperror.KindNotFound,
		},
		{
			name:     "course store failure",
			userID:   func(f *serviceFixture) uuid.UUID { return testutil.CreateTestUser(f.users).ID },
			courseID: goCourse.ID,
			prepare:  func(f *serviceFixture) { f.courses.Err = storeErr },
			wantErr:  storeErr,
			wantKind: apperror.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			id := tt.userID(f)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.service.Enroll(context.Background(), id, tt.courseID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			assert.Empty(t, f.mailer.Sent())
		})
	}
}

func TestService_Enroll_MailFailureIsReported(t *testing.T) {
	f := newServiceFixture()
	f.mailer.Err = errors.New("smtp: 421 try later")
	u := testutil.CreateTestUser(f.users)

	result, err := f.service.Enroll(context.Background(), u.ID, goCourse.ID)
	require.NoError(t, err)
	assert.False(t, result.Notification.Sent)
	assert.Contains(t, result.Notification.Error, "421")
	assert.Len(t, result.User.CoursesEnrolled, 1)
}

func TestService_Enroll_Concurrent(t *testing.T) {
	f := newServiceFixture()
	u := testutil.CreateTestUser(f.users)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Enroll(context.Background(), u.ID, goCourse.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyEnrolled):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	courses, err := f.service.ListEnrollments(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestService_ListEnrollments(t *testing.T) {
	f := newServiceFixture()

	fresh := testutil.CreateTestUser(f.users)
	courses, err := f.service.ListEnrollments(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)

	enrolled := testutil.CreateTestUser(f.users, testutil.WithEnrollments(
		user.Enrollment{ID: 1, CourseName: "First"},
		user.Enrollment{ID: 2, CourseName: "Second"},
	))
	courses, err = f.service.ListEnrollments(context.Background(), enrolled.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "First", courses[0].CourseName)

	_, err = f.service.ListEnrollments(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
