package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/content/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/requestparams"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 8 << 20

// Handler wires the content service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("content service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the content routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/content", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.Post("/", h.createPost)
			r.Get("/{postId}", h.getPost)
			r.Patch("/{postId}", h.updatePost)
			r.Delete("/{postId}", h.deletePost)
			r.Get("/{postId}/assets", h.listAssets)
			r.Post("/{postId}/assets", h.uploadAsset)
		})
		r.Route("/assets", func(r chi.Router) {
			r.Get("/{assetId}/download", h.downloadAsset)
			r.Delete("/{assetId}", h.deleteAsset)
		})
	})
}

type postResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type assetResponse struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type createPostRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Body  string `json:"body"`
}

type updatePostRequest struct {
	Title  *string `json:"title"`
	Slug   *string `json:"slug"`
	Body   *string `json:"body"`
	Status *string `json:"status"`
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	params := requestparams.ParseList(r)

	result, err := h.svc.ListPosts(r.Context(), service.ListOptions{
		Page:      params.Page,
		PerPage:   params.PerPage,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]postResponse, 0, len(result.Posts))
	for _, post := range result.Posts {
		items = append(items, toAPIPost(post))
	}

	envelope.WriteList(w, items, envelope.NewMeta(result.Page, result.PerPage, result.Total))
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "postId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
		return
	}

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIPost(post))
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	post, err := h.svc.CreatePost(r.Context(), service.CreatePostInput{
		Title: req.Title,
		Slug:  req.Slug,
		Body:  req.Body,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPIPost(post))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "postId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), id, service.UpdatePostInput{
		Title:  req.Title,
		Slug:   req.Slug,
		Body:   req.Body,
		Status: req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIPost(post))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "postId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
		return
	}

	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, map[string]bool{"deleted": true})
}

func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "postId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
		return
	}

	assets, err := h.svc.ListAssets(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]assetResponse, 0, len(assets))
	for _, asset := range assets {
		items = append(items, toAPIAsset(asset))
	}

	envelope.WriteOK(w, items)
}

func (h *Handler) uploadAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "postId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "multipart form with a 'file' part is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "multipart form with a 'file' part is required")
		return
	}
	defer file.Close()

	asset, err := h.svc.UploadAsset(r.Context(), service.UploadAssetInput{
		PostID:      id,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPIAsset(asset))
}

func (h *Handler) downloadAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "assetId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "asset not found")
		return
	}

	download, err := h.svc.DownloadAsset(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer download.Body.Close()

	w.Header().Set("Content-Type", download.Asset.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(download.Asset.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Asset.FileName))

	if _, err := io.Copy(w, download.Body); err != nil {
		h.logger.Warn("asset download interrupted", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "assetId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "asset not found")
		return
	}

	if err := h.svc.DeleteAsset(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, map[string]bool{"deleted": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		envelope.Write(w, http.StatusBadRequest, envelope.ErrWithDetails(
			envelope.CodeValidation, "invalid request", validationErr.Fields,
		))
	case errors.Is(err, service.ErrPostNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "post not found")
	case errors.Is(err, service.ErrAssetNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "asset not found")
	case errors.Is(err, service.ErrPostConflict):
		envelope.WriteError(w, http.StatusConflict, envelope.CodeConflict, "slug already in use")
	default:
		h.logger.Error("content handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPIPost(p service.Post) postResponse {
	return postResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.Body,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toAPIAsset(a service.Asset) assetResponse {
	return assetResponse{
		ID:          a.ID.String(),
		PostID:      a.PostID.String(),
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt,
	}
}
