// handlers_upload.go - Drop target and upload record handlers
package api

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/classify"
	"github.com/phisnet/backend/internal/models"
	"github.com/phisnet/backend/internal/upload"
	"github.com/vmihailenco/msgpack/v5"
)

// uploadFormField is the multipart field carrying the dropped files.
const uploadFormField = "files"

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	uploads     UploadService
	blobs       BlobSource
	maxFileSize int64
}

// NewUploadHandler creates a new upload handler instance. A non-positive
// maxFileSize reports the default drop-target ceiling.
func NewUploadHandler(uploads UploadService, blobs BlobSource, maxFileSize int64) UploadHandler {
	if maxFileSize <= 0 {
		maxFileSize = classify.MaxFileSize
	}
	return &UploadHandlerImpl{uploads: uploads, blobs: blobs, maxFileSize: maxFileSize}
}

type uploadResponse struct {
	Accepted []models.UploadRecord `json:"accepted"`
	Rejected []models.Rejection    `json:"rejected"`
}

// HandleUploadFiles accepts one or more files (multipart/form-data, field "files")
func (h *UploadHandlerImpl) HandleUploadFiles(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected multipart form data", err)
	}
	defer form.RemoveAll()

	headers := form.File[uploadFormField]
	if len(headers) == 0 {
		return NewValidationError(uploadFormField)
	}

	incoming := make([]upload.Incoming, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return NewInternalError("failed to open uploaded file", err)
		}
		defer src.Close()
		incoming = append(incoming, toIncoming(fh, src))
	}

	accepted, rejected := h.uploads.AcceptFiles(incoming)
	if rejected == nil {
		rejected = []models.Rejection{}
	}

	if len(accepted) == 0 {
		return NewUnprocessableError("no file was accepted", describeRejections(rejected))
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		Accepted: accepted,
		Rejected: rejected,
	})
}

func toIncoming(fh *multipart.FileHeader, body io.Reader) upload.Incoming {
	return upload.Incoming{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        body,
	}
}

func describeRejections(rejected []models.Rejection) string {
	parts := make([]string, 0, len(rejected))
	for _, r := range rejected {
		parts = append(parts, r.FileName+": "+r.Reason)
	}
	return strings.Join(parts, "; ")
}

// HandleListUploads returns all records in drop order
func (h *UploadHandlerImpl) HandleListUploads(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uploads.List())
}

// HandleListUploadsMsgpack returns all records encoded as MessagePack
func (h *UploadHandlerImpl) HandleListUploadsMsgpack(c echo.Context) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)

	if err := enc.Encode(h.uploads.List()); err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", buf.Bytes())
}

// HandleUploadStats returns the collection counters
func (h *UploadHandlerImpl) HandleUploadStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uploads.Stats())
}

// HandleGetUpload returns one record
func (h *UploadHandlerImpl) HandleGetUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, ok := h.uploads.Get(id)
	if !ok {
		return NewNotFoundError("upload", id)
	}

	return c.JSON(http.StatusOK, rec)
}

// HandleDeleteUpload removes one record and stops its analysis
func (h *UploadHandlerImpl) HandleDeleteUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.uploads.RemoveRecord(id); err != nil {
		return fromDomainError(err, "upload", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleClearUploads removes every record
func (h *UploadHandlerImpl) HandleClearUploads(c echo.Context) error {
	cleared := h.uploads.ClearAll()
	return c.JSON(http.StatusOK, map[string]int{"cleared": cleared})
}

type acceptedFormatsResponse struct {
	Extensions  map[models.Category][]string `json:"extensions"`
	MaxFileSize int64                        `json:"maxFileSize"`
}

// HandleAcceptedFormats lists what the drop target takes
func (h *UploadHandlerImpl) HandleAcceptedFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, acceptedFormatsResponse{
		Extensions:  classify.AcceptedExtensions(),
		MaxFileSize: h.maxFileSize,
	})
}

// HandleGetBlob returns the stored blob metadata behind a record's FileRef
func (h *UploadHandlerImpl) HandleGetBlob(c echo.Context) error {
	id := c.Param("id")
	rec, ok := h.uploads.Get(id)
	if !ok {
		return NewNotFoundError("upload", id)
	}

	info, err := h.blobs.Get(rec.FileRef)
	if err != nil {
		return fromDomainError(err, "blob", rec.FileRef)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDownloadBlob streams the uploaded file back under its original name
func (h *UploadHandlerImpl) HandleDownloadBlob(c echo.Context) error {
	id := c.Param("id")
	rec, ok := h.uploads.Get(id)
	if !ok {
		return NewNotFoundError("upload", id)
	}

	r, err := h.blobs.Open(rec.FileRef)
	if err != nil {
		return fromDomainError(err, "blob", rec.FileRef)
	}
	defer r.Close()

	contentType := rec.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": rec.FileName}))
	return c.Stream(http.StatusOK, contentType, r)
}
