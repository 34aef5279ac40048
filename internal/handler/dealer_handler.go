package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"stok/internal/model"
	"stok/internal/service"

	"github.com/rs/zerolog"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 64 << 10

const pdfContentType = "application/pdf"

// DealerHandler handles dealer-related HTTP requests.
type DealerHandler struct {
	service        service.DealerService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewDealerHandler creates a new dealer handler. Uploaded documents larger
// than maxUploadBytes are rejected.
func NewDealerHandler(service service.DealerService, maxUploadBytes int64, logger zerolog.Logger) *DealerHandler {
	return &DealerHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "dealer").Logger(),
	}
}

// List handles GET /api/v1/dealers.
func (h *DealerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	isActive, err := parseBool(q.Get("isActive"), "isActive")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	withSummary, err := parseBool(q.Get("includeOrdersSummary"), "includeOrdersSummary")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.DealerFilter{
		Search:               strings.TrimSpace(q.Get("search")),
		Status:               strings.ToLower(strings.TrimSpace(q.Get("status"))),
		IsActive:             isActive,
		IncludeOrdersSummary: withSummary != nil && *withSummary,
		Page:                 model.NewPage(q.Get("page"), q.Get("pageSize")),
	}

	dealers, meta, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeList(w, meta, dealers)
}

// Get handles GET /api/v1/dealers/{id}. The orders summary is always
// attached to a single dealer.
func (h *DealerHandler) Get(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.service.Get(r.Context(), r.PathValue("id"), true)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, dealer)
}

// Create handles POST /api/v1/dealers.
func (h *DealerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DealerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	dealer, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, dealer)
}

// Update handles PUT /api/v1/dealers/{id}.
func (h *DealerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.DealerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	dealer, err := h.service.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, dealer)
}

// Delete handles DELETE /api/v1/dealers/{id}.
func (h *DealerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type documentResponse struct {
	Path   string        `json:"path"`
	Dealer *model.Dealer `json:"dealer"`
}

// UploadDocument handles POST /api/v1/dealers/{id}/documents/{slot}. The
// document arrives as the multipart field "file" and must be a PDF.
func (h *DealerHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	slot := model.DocumentSlot(r.PathValue("slot"))
	if !slot.Valid() {
		writeError(w, r, model.NewValidationError(fmt.Sprintf("unknown document slot '%s'", slot)), h.logger)
		return
	}

	upload, cleanup, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	defer cleanup()

	dealer, err := h.service.UploadDocument(r.Context(), r.PathValue("id"), slot, upload)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, documentResponse{Path: dealer.DocumentPath(slot), Dealer: dealer})
}

func (h *DealerHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Upload{}, noop, h.tooLarge()
		}
		return service.Upload{}, noop, model.NewValidationError("request must be multipart/form-data with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return service.Upload{}, noop, model.NewValidationError("file is required")
	}
	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}

	if header.Size > h.maxUploadBytes {
		cleanup()
		return service.Upload{}, noop, h.tooLarge()
	}

	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || mediaType != pdfContentType {
		cleanup()
		return service.Upload{}, noop, model.NewDomainError(model.KindValidation, model.ErrCodeFileType,
			"invalid file type", "only PDF documents are accepted")
	}

	return service.Upload{
		Filename:    header.Filename,
		ContentType: mediaType,
		Size:        header.Size,
		Body:        file,
	}, cleanup, nil
}

func (h *DealerHandler) tooLarge() error {
	return model.NewValidationError(fmt.Sprintf("file must not exceed %d bytes", h.maxUploadBytes))
}
