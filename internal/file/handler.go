package file

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/filedrop/service/internal/response"
	"github.com/filedrop/service/internal/storage"
)

// multipartOverhead is the allowance for multipart framing on top of the
// maximum file size when capping the raw request body.
const multipartOverhead = 1 << 20

// formField is the multipart field that carries the file.
const formField = "file"

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc           *Service
	logger        *zap.Logger
	scheme        string
	uploadTimeout time.Duration
}

// NewHandler creates a new file Handler. scheme is used to build the
// returned URLs; the host always comes from the request.
func NewHandler(svc *Service, logger *zap.Logger, scheme string, uploadTimeout time.Duration) *Handler {
	if scheme == "" {
		scheme = "http"
	}
	return &Handler{svc: svc, logger: logger, scheme: scheme, uploadTimeout: uploadTimeout}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the multipart field "file" under a random name and returns its serve, download and delete URLs.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.uploadTimeout)
		defer cancel()
	}

	if limit := h.svc.MaxUploadSize(); limit > 0 {
		if r.ContentLength > limit+multipartOverhead {
			h.writeError(w, ErrTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "expected a multipart/form-data body")
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.writeError(w, ErrTooLarge)
		case errors.Is(err, io.EOF):
			response.BadRequest(w, `multipart field "file" is required`)
		default:
			response.BadRequest(w, "malformed multipart body")
		}
		return
	}
	defer part.Close()

	originalName := rawFileName(part)
	if originalName == "" {
		response.BadRequest(w, `multipart field "file" must carry a filename`)
		return
	}

	declared := int64(-1)
	if v := part.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			declared = n
		}
	}

	stored, err := h.svc.Upload(ctx, UploadInput{
		OriginalName: originalName,
		Body:         part,
		DeclaredSize: declared,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, NewUploadResponse(stored, h.baseURL(r)))
}

// Serve godoc
//
//	@Summary		Serve a file
//	@Description	Returns the raw bytes with a content type inferred from the name. Supports range requests.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			name	path	string	true	"Stored file name"
//	@Success		200
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/file/{name} [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, pathParam(r, "name"), false)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Returns the file as an attachment.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			fileName	path	string	true	"Stored file name"
//	@Success		200
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/download/{fileName} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, pathParam(r, "fileName"), true)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Tags			files
//	@Produce		plain
//	@Param			fileName	path		string	true	"Stored file name"
//	@Success		200			{string}	string	"File deleted successfully"
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/delete/{fileName} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), pathParam(r, "fileName")); err != nil {
		h.writeError(w, err)
		return
	}
	response.Text(w, http.StatusOK, "File deleted successfully")
}

// LibraryDelete godoc
//
//	@Summary		Delete a file from the library view
//	@Tags			library
//	@Param			fileName	path	string	true	"Stored file name"
//	@Success		200
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/library/delete/{fileName} [delete]
func (h *Handler) LibraryDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), pathParam(r, "fileName")); err != nil {
		h.writeError(w, err)
		return
	}
	response.Empty(w, http.StatusOK)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, id string, attachment bool) {
	rc, obj, err := h.svc.Open(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer rc.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.ID}))
	}
	http.ServeContent(w, r, obj.ID, obj.ModTime, rc)
}

// writeError maps service errors onto status codes without leaking details.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, "file not found")
	case errors.Is(err, storage.ErrInvalidName):
		response.BadRequest(w, "invalid file name")
	case errors.Is(err, ErrTooLarge):
		response.PayloadTooLarge(w, "file exceeds the maximum upload size of "+humanize.IBytes(uint64(h.svc.MaxUploadSize())))
	case errors.Is(err, ErrUpstreamAborted):
		response.BadRequest(w, "upload was interrupted")
	default:
		h.logger.Error("file request failed", zap.Error(err))
		response.InternalError(w)
	}
}

func (h *Handler) baseURL(r *http.Request) string {
	return h.scheme + "://" + r.Host
}

// pathParam returns the decoded route parameter. chi matches on the raw path,
// so escaped separators reach validation as real separators.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// nextFilePart advances mr to the "file" field, discarding other fields.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == formField {
			return part, nil
		}
		_ = part.Close()
	}
}

// rawFileName returns the filename parameter exactly as the client sent it.
// multipart.Part.FileName strips directories, which would hide traversal
// attempts that must be rejected instead.
func rawFileName(p *multipart.Part) string {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}
