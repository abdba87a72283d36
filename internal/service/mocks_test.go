package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
	"github.com/mkarpinski/blog-api/internal/slug"
	"github.com/mkarpinski/blog-api/internal/storage"
)

// Hand-written in-memory fakes for the repository interfaces. They mimic
// the sqlite contracts closely enough for the rules under test: conflicts
// on duplicate titles, NotFound sentinels, case-insensitive title lookup.

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type mockArticleRepo struct {
	seq      int
	articles map[string]*model.Article
	likes    map[string]map[string]bool
}

var _ repository.ArticleRepository = (*mockArticleRepo)(nil)

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{
		articles: make(map[string]*model.Article),
		likes:    make(map[string]map[string]bool),
	}
}

func (m *mockArticleRepo) Create(_ context.Context, article *model.Article) error {
	for _, existing := range m.articles {
		if strings.EqualFold(existing.Title, article.Title) {
			return apperror.Conflict("article", article.Title)
		}
	}
	m.seq++
	article.ID = fmt.Sprintf("article-%d", m.seq)
	article.Slug = slug.Make(article.Title)
	article.CreatedAt = time.Now()
	article.PublishedAt = nil
	copied := *article
	m.articles[article.ID] = &copied
	return nil
}

func (m *mockArticleRepo) GetByID(_ context.Context, id string) (*model.Article, error) {
	article, ok := m.articles[id]
	if !ok {
		return nil, apperror.NotFound("article", id)
	}
	copied := *article
	return &copied, nil
}

func (m *mockArticleRepo) GetBySlug(_ context.Context, slugStr string) (*model.Article, error) {
	for _, article := range m.articles {
		if slug.Matches(article.Title, slugStr) {
			copied := *article
			copied.LikeCount = len(m.likes[article.ID])
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("article", slugStr)
}

func (m *mockArticleRepo) List(_ context.Context, published bool, _ repository.ListOptions) ([]model.Article, error) {
	var out []model.Article
	for _, article := range m.articles {
		if article.Published() == published {
			out = append(out, *article)
		}
	}
	return out, nil
}

func (m *mockArticleRepo) Update(_ context.Context, article *model.Article) error {
	if _, ok := m.articles[article.ID]; !ok {
		return apperror.NotFound("article", article.ID)
	}
	for id, existing := range m.articles {
		if id != article.ID && strings.EqualFold(existing.Title, article.Title) {
			return apperror.Conflict("article", article.Title)
		}
	}
	article.Slug = slug.Make(article.Title)
	copied := *article
	m.articles[article.ID] = &copied
	return nil
}

func (m *mockArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.articles[id]; !ok {
		return apperror.NotFound("article", id)
	}
	delete(m.articles, id)
	delete(m.likes, id)
	return nil
}

func (m *mockArticleRepo) ReplaceTags(_ context.Context, articleID string, tagIDs []string) error {
	article, ok := m.articles[articleID]
	if !ok {
		return apperror.NotFound("article", articleID)
	}
	article.Tags = make([]model.Tag, len(tagIDs))
	for i, id := range tagIDs {
		article.Tags[i] = model.Tag{ID: id, Name: id}
	}
	return nil
}

func (m *mockArticleRepo) HasLike(_ context.Context, articleID, userID string) (bool, error) {
	return m.likes[articleID][userID], nil
}

func (m *mockArticleRepo) AddLike(_ context.Context, articleID, userID string) error {
	if m.likes[articleID] == nil {
		m.likes[articleID] = make(map[string]bool)
	}
	if m.likes[articleID][userID] {
		return apperror.Conflict("like", articleID)
	}
	m.likes[articleID][userID] = true
	return nil
}

func (m *mockArticleRepo) RemoveLike(_ context.Context, articleID, userID string) error {
	if !m.likes[articleID][userID] {
		return apperror.NotFound("like", articleID)
	}
	delete(m.likes[articleID], userID)
	return nil
}

type mockSnippetRepo struct {
	seq      int
	snippets map[string]*model.Snippet
}

var _ repository.SnippetRepository = (*mockSnippetRepo)(nil)

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[string]*model.Snippet)}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	for _, existing := range m.snippets {
		if strings.EqualFold(existing.Title, snippet.Title) {
			return apperror.Conflict("snippet", snippet.Title)
		}
	}
	m.seq++
	snippet.ID = fmt.Sprintf("snippet-%d", m.seq)
	snippet.Slug = slug.Make(snippet.Title)
	snippet.CreatedAt = time.Now()
	snippet.PublishedAt = nil
	copied := *snippet
	m.snippets[snippet.ID] = &copied
	return nil
}

func (m *mockSnippetRepo) GetBySlug(_ context.Context, slugStr string) (*model.Snippet, error) {
	for _, snippet := range m.snippets {
		if slug.Matches(snippet.Title, slugStr) {
			copied := *snippet
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("snippet", slugStr)
}

func (m *mockSnippetRepo) List(_ context.Context, published bool, _ repository.ListOptions) ([]model.Snippet, error) {
	var out []model.Snippet
	for _, snippet := range m.snippets {
		if snippet.Approved() == published {
			out = append(out, *snippet)
		}
	}
	return out, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	copied := *snippet
	m.snippets[snippet.ID] = &copied
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

func (m *mockSnippetRepo) ReplaceTags(_ context.Context, snippetID string, tagIDs []string) error {
	snippet, ok := m.snippets[snippetID]
	if !ok {
		return apperror.NotFound("snippet", snippetID)
	}
	snippet.Tags = make([]model.Tag, len(tagIDs))
	for i, id := range tagIDs {
		snippet.Tags[i] = model.Tag{ID: id, Name: id}
	}
	return nil
}

type mockTagRepo struct {
	seq  int
	tags map[string]*model.Tag
}

var _ repository.TagRepository = (*mockTagRepo)(nil)

func newMockTagRepo() *mockTagRepo {
	return &mockTagRepo{tags: make(map[string]*model.Tag)}
}

func (m *mockTagRepo) GetOrCreate(_ context.Context, name string) (*model.Tag, error) {
	if tag, ok := m.tags[name]; ok {
		return tag, nil
	}
	m.seq++
	tag := &model.Tag{ID: fmt.Sprintf("tag-%d", m.seq), Name: name}
	m.tags[name] = tag
	return tag, nil
}

func (m *mockTagRepo) GetByName(_ context.Context, name string) (*model.Tag, error) {
	tag, ok := m.tags[name]
	if !ok {
		return nil, apperror.NotFound("tag", name)
	}
	return tag, nil
}

type mockUserRepo struct {
	seq   int
	users map[string]*model.User
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return apperror.Conflict("username", user.Username)
		}
		if existing.Email == user.Email {
			return apperror.Conflict("email", user.Email)
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	user.CreatedAt = time.Now()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

type mockTokenRepo struct {
	revoked map[string]time.Time
}

var _ repository.TokenRepository = (*mockTokenRepo)(nil)

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{revoked: make(map[string]time.Time)}
}

func (m *mockTokenRepo) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.revoked[jti] = expiresAt
	return nil
}

func (m *mockTokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	expiry, ok := m.revoked[jti]
	return ok && expiry.After(time.Now()), nil
}

type mockFileStore struct {
	files map[string]string // folder/name -> contents
}

var _ storage.FileStore = (*mockFileStore)(nil)

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: make(map[string]string)}
}

func (m *mockFileStore) Save(folder, stem, original string, r io.Reader) (string, error) {
	ext, ok := storage.Extension(original)
	if !ok {
		return "", apperror.UploadRejected("unsupported file type")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := stem + ext
	m.files[folder+"/"+name] = string(data)
	return name, nil
}

func (m *mockFileStore) Path(folder, name string) (string, error) {
	if _, ok := m.files[folder+"/"+name]; !ok {
		return "", apperror.NotFound("file", name)
	}
	return "/fake/" + folder + "/" + name, nil
}

func (m *mockFileStore) Find(folder, stem string) (string, error) {
	for key := range m.files {
		if strings.HasPrefix(key, folder+"/"+stem+".") {
			return strings.TrimPrefix(key, folder+"/"), nil
		}
	}
	return "", apperror.NotFound("file", stem)
}

func (m *mockFileStore) Delete(folder, name string) error {
	key := folder + "/" + name
	if _, ok := m.files[key]; !ok {
		return apperror.NotFound("file", name)
	}
	delete(m.files, key)
	return nil
}
