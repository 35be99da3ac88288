package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

var (
	ErrImageRequired = apperror.Validation(httputil.CodeImageRequired, "profile image file is required")
	ErrInvalidImage  = apperror.Validation(httputil.CodeInvalidImage, "file must be an image")
	ErrFileTooLarge  = apperror.Validation(httputil.CodeFileTooLarge, "file is too large")
	ErrUserNotFound  = apperror.NotFound(httputil.CodeUserNotFound, "user not found")
)

// UserStore persists profile fields.
type UserStore interface {
	UpdateProfile(ctx context.Context, id uuid.UUID, p user.ProfileUpdate) (*user.User, error)
}

// ImageHost stores an image under a public id and returns its URL.
type ImageHost interface {
	Upload(ctx context.Context, publicID, path string) (string, error)
}

// Input is a profile update request after file intake.
type Input struct {
	PhoneNo string
	Gender  string
	Image   *StoredFile
}

// Service updates profiles and forwards images to the image host in the background.
type Service struct {
	users   UserStore
	images  ImageHost
	logger  *logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewService creates the profile service. images may be nil, which disables forwarding.
func NewService(users UserStore, images ImageHost, logger *logging.Logger, timeout time.Duration) *Service {
	return &Service{
		users:   users,
		images:  images,
		logger:  logger,
		timeout: timeout,
	}
}

// PublicID is the image host key for a user's profile image.
func PublicID(id uuid.UUID) string {
	return "user_" + id.String()
}

// UpdateProfile persists the profile fields with a reference to the stored
// image, then forwards the image without waiting for the result.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in Input) (*user.User, error) {
	if in.Image == nil {
		return nil, ErrImageRequired
	}

	updated, err := s.users.UpdateProfile(ctx, id, user.ProfileUpdate{
		PhoneNo:  in.PhoneNo,
		Gender:   in.Gender,
		Image:    in.Image.OriginalName,
		ImageURL: in.Image.Path,
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.forward(id, in.Image.Path)

	return updated, nil
}

// forward uploads the image in the background. Failures are logged only;
// the profile already references the local copy.
func (s *Service) forward(id uuid.UUID, path string) {
	if s.images == nil {
		return
	}

	publicID := PublicID(id)
	logger := s.logger.WithFields(map[string]any{"user_id": id.String(), "public_id": publicID})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		url, err := s.images.Upload(ctx, publicID, path)
		if err != nil {
			logger.Warn("failed to host profile image", "path", path, "error", err)
			return
		}
		logger.Info("profile image hosted", "url", url)
	}()
}

// Wait blocks until background image uploads finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
