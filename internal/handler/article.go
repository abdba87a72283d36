package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/auth"
	"github.com/mkarpinski/blog-api/internal/service"
	"github.com/mkarpinski/blog-api/internal/slug"
	"github.com/mkarpinski/blog-api/internal/storage"
)

// ArticleHandler exposes articles over HTTP. Published articles and their
// images are public; everything else sits behind the auth middleware, which
// guarantees an identity is present in the request context.
type ArticleHandler struct {
	articles *service.ArticleService
	files    storage.FileStore
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, files storage.FileStore, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		files:    files,
		logger:   logger,
	}
}

type articleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// HandleList returns published articles.
// GET /api/v1/articles
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	articles, err := h.articles.ListPublished(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleGet returns one published article by slug.
// GET /api/v1/articles/{slug}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleListDrafts returns unpublished articles.
// GET /api/v1/articles/drafts
func (h *ArticleHandler) HandleListDrafts(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	articles, err := h.articles.ListDrafts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleGetDraft returns one draft by slug.
// GET /api/v1/articles/drafts/{slug}
func (h *ArticleHandler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.GetDraft(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleCreate saves a new draft owned by the caller.
// POST /api/v1/articles
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	article, err := h.articles.Create(r.Context(), callerID, req.Title, req.Description, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// HandleUpdate modifies an article's text fields.
// PUT /api/v1/articles/{slug}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	article, err := h.articles.Update(r.Context(), callerID, r.PathValue("slug"), req.Title, req.Description, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleDelete removes an article.
// DELETE /api/v1/articles/{slug}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.articles.Delete(r.Context(), callerID, r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetTags replaces the article's tag set.
// PUT /api/v1/articles/{slug}/tags
func (h *ArticleHandler) HandleSetTags(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	article, err := h.articles.SetTags(r.Context(), callerID, r.PathValue("slug"), req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleUploadImage stores the article's cover image and records it. A
// previous image uploaded under another extension is removed once the new
// one is attached, so replacements never strand files on disk.
// PUT /api/v1/articles/{slug}/image  (multipart field "image")
func (h *ArticleHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	slugStr := r.PathValue("slug")
	stem := slug.Make(slugStr)

	file, header, err := formImage(w, r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	previous, _ := h.files.Find(storage.FolderImages, stem)

	name, err := h.files.Save(storage.FolderImages, stem, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := h.articles.AttachImage(r.Context(), callerID, slugStr, name)
	if err != nil {
		// the file is orphaned if the attach fails; remove it
		if name != previous {
			if cleanupErr := h.files.Delete(storage.FolderImages, name); cleanupErr != nil {
				h.logger.Warn("failed to remove orphaned image",
					slog.String("file", name),
					slog.String("error", cleanupErr.Error()),
				)
			}
		}
		writeError(w, err)
		return
	}
	if previous != "" && previous != name {
		if err := h.files.Delete(storage.FolderImages, previous); err != nil {
			h.logger.Warn("failed to remove replaced image",
				slog.String("file", previous),
				slog.String("error", err.Error()),
			)
		}
	}
	writeJSON(w, http.StatusCreated, article)
}

// HandleGetImage serves a published article's cover image.
// GET /api/v1/articles/{slug}/image
func (h *ArticleHandler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	slugStr := r.PathValue("slug")
	article, err := h.articles.GetPublished(r.Context(), slugStr)
	if err != nil {
		writeError(w, err)
		return
	}
	if article.ImageURL == "" {
		writeError(w, apperror.NotFound("image", slugStr))
		return
	}

	path, err := h.files.Path(storage.FolderImages, article.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// HandlePublish transitions a draft to published.
// POST /api/v1/articles/{slug}/publish
func (h *ArticleHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	article, err := h.articles.Publish(r.Context(), callerID, r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleUnpublish returns a published article to draft.
// DELETE /api/v1/articles/{slug}/publish
func (h *ArticleHandler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	article, err := h.articles.Unpublish(r.Context(), callerID, r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleLike records the caller's like.
// POST /api/v1/articles/{slug}/like
func (h *ArticleHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.articles.Like(r.Context(), callerID, r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlike removes the caller's like.
// DELETE /api/v1/articles/{slug}/like
func (h *ArticleHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.articles.RevokeLike(r.Context(), callerID, r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
