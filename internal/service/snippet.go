package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
	"github.com/mkarpinski/blog-api/internal/slug"
)

const MaxCodeLength = 100000

// SnippetService handles community code snippets. Anyone may submit one;
// it stays out of the public listing until an authenticated user approves
// it. The author is a free-form display name, not an account.
type SnippetService struct {
	snippets repository.SnippetRepository
	tags     repository.TagRepository
	logger   *slog.Logger
}

func NewSnippetService(snippets repository.SnippetRepository, tags repository.TagRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		tags:     tags,
		logger:   logger,
	}
}

// Create validates and saves a new snippet awaiting approval.
func (s *SnippetService) Create(ctx context.Context, title, description, code, language, author string, tagNames []string) (*model.Snippet, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
	}
	if slug.Make(title) == "" {
		return nil, apperror.ValidationFailed("title", "snippet title must contain letters or digits")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "snippet code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	snippet := &model.Snippet{
		Title:       title,
		Description: strings.TrimSpace(description),
		Code:        code,
		Language:    strings.TrimSpace(language),
		Author:      strings.TrimSpace(author),
	}
	if err := s.snippets.Create(ctx, snippet); err != nil {
		return nil, err
	}

	if len(tagNames) > 0 {
		tags, err := s.attachTags(ctx, snippet.ID, tagNames)
		if err != nil {
			return nil, err
		}
		snippet.Tags = tags
	}

	s.logger.Info("snippet submitted",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
	)
	return snippet, nil
}

// GetApproved resolves a slug to an approved snippet. A pending snippet
// behind the same slug is not found.
func (s *SnippetService) GetApproved(ctx context.Context, slugStr string) (*model.Snippet, error) {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if !snippet.Approved() {
		return nil, apperror.NotFound("snippet", slugStr)
	}
	return snippet, nil
}

// GetPending resolves a slug to a snippet still awaiting approval.
func (s *SnippetService) GetPending(ctx context.Context, slugStr string) (*model.Snippet, error) {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if snippet.Approved() {
		return nil, apperror.NotFound("snippet", slugStr)
	}
	return snippet, nil
}

// ListApproved returns approved snippets, newest first.
func (s *SnippetService) ListApproved(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.List(ctx, true, clampList(limit, offset))
}

// ListPending returns the approval queue, newest first.
func (s *SnippetService) ListPending(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.List(ctx, false, clampList(limit, offset))
}

// Update modifies a snippet's fields. Empty values leave a field unchanged;
// a non-nil tag list replaces the tag set wholesale.
func (s *SnippetService) Update(ctx context.Context, slugStr, title, description, code, language string, tagNames []string) (*model.Snippet, error) {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
		}
		snippet.Title = title
	}
	if description != "" {
		snippet.Description = strings.TrimSpace(description)
	}
	if code != "" {
		if len(code) > MaxCodeLength {
			return nil, apperror.ValidationFailed("code",
				fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
		}
		snippet.Code = code
	}
	if language != "" {
		snippet.Language = strings.TrimSpace(language)
	}

	if err := s.snippets.Update(ctx, snippet); err != nil {
		return nil, err
	}
	if tagNames != nil {
		tags, err := s.attachTags(ctx, snippet.ID, tagNames)
		if err != nil {
			return nil, err
		}
		snippet.Tags = tags
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return snippet, nil
}

// Approve moves a pending snippet into the public listing.
func (s *SnippetService) Approve(ctx context.Context, slugStr string) (*model.Snippet, error) {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if snippet.Approved() {
		return nil, apperror.PreconditionFailed("state", "snippet is already approved")
	}

	now := time.Now()
	snippet.PublishedAt = &now
	if err := s.snippets.Update(ctx, snippet); err != nil {
		return nil, err
	}
	s.logger.Info("snippet approved", slog.String("id", snippet.ID))
	return snippet, nil
}

// RevokeApproval returns an approved snippet to the queue.
func (s *SnippetService) RevokeApproval(ctx context.Context, slugStr string) (*model.Snippet, error) {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if !snippet.Approved() {
		return nil, apperror.PreconditionFailed("state", "snippet is not yet approved")
	}

	snippet.PublishedAt = nil
	if err := s.snippets.Update(ctx, snippet); err != nil {
		return nil, err
	}
	s.logger.Info("snippet approval revoked", slog.String("id", snippet.ID))
	return snippet, nil
}

// Delete removes a snippet; tag links cascade.
func (s *SnippetService) Delete(ctx context.Context, slugStr string) error {
	snippet, err := s.resolve(ctx, slugStr)
	if err != nil {
		return err
	}
	if err := s.snippets.Delete(ctx, snippet.ID); err != nil {
		return err
	}
	s.logger.Info("snippet deleted", slog.String("id", snippet.ID))
	return nil
}

func (s *SnippetService) resolve(ctx context.Context, slugStr string) (*model.Snippet, error) {
	slugStr = strings.TrimSpace(slugStr)
	if slugStr == "" {
		return nil, apperror.ValidationFailed("slug", "snippet slug is required")
	}
	return s.snippets.GetBySlug(ctx, slugStr)
}

func (s *SnippetService) attachTags(ctx context.Context, snippetID string, names []string) ([]model.Tag, error) {
	tagIDs := make([]string, 0, len(names))
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tag.ID)
		tags = append(tags, *tag)
	}
	if err := s.snippets.ReplaceTags(ctx, snippetID, tagIDs); err != nil {
		return nil, err
	}
	return tags, nil
}
