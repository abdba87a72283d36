package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
	"github.com/mkarpinski/blog-api/internal/storage"
)

// UserService exposes public profiles and avatar management. Avatars are
// stored as user_{id}.{ext}, one per account, and replacing one removes
// whatever format was there before.
type UserService struct {
	users  repository.UserRepository
	files  storage.FileStore
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, files storage.FileStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		files:  files,
		logger: logger,
	}
}

// Get returns the public profile for a username.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	return s.users.GetByUsername(ctx, username)
}

// SetAvatar stores a new avatar for the caller's own account and records
// its filename. Any previous avatar is removed first, whatever its format.
func (s *UserService) SetAvatar(ctx context.Context, callerID, username, original string, r io.Reader) (*model.User, error) {
	user, err := s.ownProfile(ctx, callerID, username)
	if err != nil {
		return nil, err
	}

	stem := "user_" + user.ID
	if existing, err := s.files.Find(storage.FolderAvatars, stem); err == nil {
		if err := s.files.Delete(storage.FolderAvatars, existing); err != nil {
			return nil, err
		}
	}

	name, err := s.files.Save(storage.FolderAvatars, stem, original, r)
	if err != nil {
		return nil, err
	}

	user.AvatarName = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("avatar updated",
		slog.String("user", user.ID),
		slog.String("file", name),
	)
	return user, nil
}

// AvatarPath returns the on-disk path of a user's avatar for serving.
func (s *UserService) AvatarPath(ctx context.Context, username string) (string, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if user.AvatarName == "" {
		return "", apperror.NotFound("avatar", username)
	}
	return s.files.Path(storage.FolderAvatars, user.AvatarName)
}

// DeleteAvatar removes the caller's own avatar.
func (s *UserService) DeleteAvatar(ctx context.Context, callerID, username string) error {
	user, err := s.ownProfile(ctx, callerID, username)
	if err != nil {
		return err
	}
	if user.AvatarName == "" {
		return apperror.NotFound("avatar", username)
	}

	if err := s.files.Delete(storage.FolderAvatars, user.AvatarName); err != nil {
		return err
	}
	user.AvatarName = ""
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("avatar deleted", slog.String("user", user.ID))
	return nil
}

func (s *UserService) ownProfile(ctx context.Context, callerID, username string) (*model.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID != callerID {
		return nil, apperror.Forbidden("you can only change your own avatar")
	}
	return user, nil
}
