// Package service contains the business logic layer: validation, state
// machine rules, and ownership checks. Services take primitives, return
// models and apperror values, and know nothing about HTTP.
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

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxContentLength     = 100000
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// ArticleService handles articles: drafts, publication, tags, and likes.
// Every mutation is gated on the caller being the article's author.
type ArticleService struct {
	articles repository.ArticleRepository
	tags     repository.TagRepository
	logger   *slog.Logger
}

func NewArticleService(articles repository.ArticleRepository, tags repository.TagRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		tags:     tags,
		logger:   logger,
	}
}

// Create validates and saves a new draft article owned by authorID.
func (s *ArticleService) Create(ctx context.Context, authorID, title, description, content string) (*model.Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "article title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("article title must be %d characters or less", MaxTitleLength))
	}
	if slug.Make(title) == "" {
		return nil, apperror.ValidationFailed("title", "article title must contain letters or digits")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}

	article := &model.Article{
		AuthorID:    authorID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Content:     content,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article created",
		slog.String("id", article.ID),
		slog.String("title", article.Title),
		slog.String("author", authorID),
	)
	return article, nil
}

// GetPublished resolves a slug to a published article. A draft behind the
// same slug is reported as not found, not as forbidden.
func (s *ArticleService) GetPublished(ctx context.Context, slugStr string) (*model.Article, error) {
	article, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if !article.Published() {
		return nil, apperror.NotFound("article", slugStr)
	}
	return article, nil
}

// GetDraft resolves a slug to a draft article for an authenticated caller.
func (s *ArticleService) GetDraft(ctx context.Context, slugStr string) (*model.Article, error) {
	article, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if article.Published() {
		return nil, apperror.NotFound("article", slugStr)
	}
	return article, nil
}

// ListPublished returns published articles, newest first.
func (s *ArticleService) ListPublished(ctx context.Context, limit, offset int) ([]model.Article, error) {
	return s.articles.List(ctx, true, clampList(limit, offset))
}

// ListDrafts returns unpublished articles, newest first.
func (s *ArticleService) ListDrafts(ctx context.Context, limit, offset int) ([]model.Article, error) {
	return s.articles.List(ctx, false, clampList(limit, offset))
}

// Update modifies a draft or published article's text fields. Empty values
// leave the field unchanged, so a title edit cannot be undone by omission.
func (s *ArticleService) Update(ctx context.Context, callerID, slugStr, title, description, content string) (*model.Article, error) {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("article title must be %d characters or less", MaxTitleLength))
		}
		article.Title = title
	}
	if description != "" {
		article.Description = strings.TrimSpace(description)
	}
	if content != "" {
		if len(content) > MaxContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxContentLength))
		}
		article.Content = content
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	s.logger.Info("article updated", slog.String("id", article.ID))
	return article, nil
}

// SetTags replaces the article's whole tag set with the named tags,
// creating any that do not exist yet.
func (s *ArticleService) SetTags(ctx context.Context, callerID, slugStr string, names []string) (*model.Article, error) {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return nil, err
	}

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

	if err := s.articles.ReplaceTags(ctx, article.ID, tagIDs); err != nil {
		return nil, err
	}
	article.Tags = tags

	s.logger.Info("article tags replaced",
		slog.String("id", article.ID),
		slog.Int("count", len(tags)),
	)
	return article, nil
}

// AttachImage records the stored image filename on the article. The file
// itself is saved by the handler through the storage package.
func (s *ArticleService) AttachImage(ctx context.Context, callerID, slugStr, filename string) (*model.Article, error) {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return nil, err
	}

	article.ImageURL = filename
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	s.logger.Info("article image attached",
		slog.String("id", article.ID),
		slog.String("image", filename),
	)
	return article, nil
}

// Publish transitions a draft to published. The draft must carry an image
// and at least one tag; a rejected transition leaves the article untouched.
func (s *ArticleService) Publish(ctx context.Context, callerID, slugStr string) (*model.Article, error) {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return nil, err
	}
	if article.Published() {
		return nil, apperror.PreconditionFailed("state", "article is already published")
	}
	if article.ImageURL == "" {
		return nil, apperror.PreconditionFailed("image", "article cannot be published without an image")
	}
	if len(article.Tags) == 0 {
		return nil, apperror.PreconditionFailed("tags", "article cannot be published without tags")
	}

	now := time.Now()
	article.PublishedAt = &now
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	s.logger.Info("article published", slog.String("id", article.ID))
	return article, nil
}

// Unpublish returns a published article to draft.
func (s *ArticleService) Unpublish(ctx context.Context, callerID, slugStr string) (*model.Article, error) {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return nil, err
	}
	if !article.Published() {
		return nil, apperror.PreconditionFailed("state", "article is not published")
	}

	article.PublishedAt = nil
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	s.logger.Info("article unpublished", slog.String("id", article.ID))
	return article, nil
}

// Like records callerID's like on a published article. Authors cannot like
// their own work, and liking twice is rejected, not silently ignored.
func (s *ArticleService) Like(ctx context.Context, callerID, slugStr string) error {
	article, err := s.GetPublished(ctx, slugStr)
	if err != nil {
		return err
	}
	if article.AuthorID == callerID {
		return apperror.Forbidden("you cannot like your own article")
	}

	has, err := s.articles.HasLike(ctx, article.ID, callerID)
	if err != nil {
		return err
	}
	if has {
		return apperror.Forbidden("you have already liked this article")
	}
	if err := s.articles.AddLike(ctx, article.ID, callerID); err != nil {
		return err
	}

	s.logger.Info("article liked",
		slog.String("id", article.ID),
		slog.String("user", callerID),
	)
	return nil
}

// RevokeLike removes callerID's like. Revoking a like that was never
// given is rejected the same way a duplicate like is.
func (s *ArticleService) RevokeLike(ctx context.Context, callerID, slugStr string) error {
	article, err := s.GetPublished(ctx, slugStr)
	if err != nil {
		return err
	}
	has, err := s.articles.HasLike(ctx, article.ID, callerID)
	if err != nil {
		return err
	}
	if !has {
		return apperror.Forbidden("you have not liked this article")
	}
	if err := s.articles.RemoveLike(ctx, article.ID, callerID); err != nil {
		return err
	}

	s.logger.Info("article like revoked",
		slog.String("id", article.ID),
		slog.String("user", callerID),
	)
	return nil
}

// Delete removes the article and, through cascades, its tag links and likes.
func (s *ArticleService) Delete(ctx context.Context, callerID, slugStr string) error {
	article, err := s.resolveOwned(ctx, callerID, slugStr)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		return err
	}
	s.logger.Info("article deleted", slog.String("id", article.ID))
	return nil
}

func (s *ArticleService) resolve(ctx context.Context, slugStr string) (*model.Article, error) {
	slugStr = strings.TrimSpace(slugStr)
	if slugStr == "" {
		return nil, apperror.ValidationFailed("slug", "article slug is required")
	}
	return s.articles.GetBySlug(ctx, slugStr)
}

func (s *ArticleService) resolveOwned(ctx context.Context, callerID, slugStr string) (*model.Article, error) {
	article, err := s.resolve(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != callerID {
		return nil, apperror.Forbidden("only the author can modify this article")
	}
	return article, nil
}

func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
