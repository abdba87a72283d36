package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/service"
)

// SnippetHandler exposes community snippets over HTTP. Submission and the
// approved listing are public; the moderation queue and all mutations
// require authentication.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

type snippetRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
}

// HandleList returns approved snippets.
// GET /api/v1/snippets
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	snippets, err := h.snippets.ListApproved(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns one approved snippet by slug.
// GET /api/v1/snippets/{slug}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetApproved(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleListPending returns the approval queue.
// GET /api/v1/snippets/pending
func (h *SnippetHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	snippets, err := h.snippets.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleGetPending returns one snippet awaiting approval.
// GET /api/v1/snippets/pending/{slug}
func (h *SnippetHandler) HandleGetPending(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetPending(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleCreate submits a new snippet into the approval queue.
// POST /api/v1/snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), req.Title, req.Description, req.Code, req.Language, req.Author, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleUpdate modifies a snippet's fields and, when a tag list is
// present, replaces its tag set.
// PUT /api/v1/snippets/{slug}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Update(r.Context(), r.PathValue("slug"), req.Title, req.Description, req.Code, req.Language, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
// DELETE /api/v1/snippets/{slug}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApprove moves a pending snippet into the public listing.
// POST /api/v1/snippets/{slug}/approve
func (h *SnippetHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Approve(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleRevokeApproval sends an approved snippet back to the queue.
// DELETE /api/v1/snippets/{slug}/approve
func (h *SnippetHandler) HandleRevokeApproval(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.RevokeApproval(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}
