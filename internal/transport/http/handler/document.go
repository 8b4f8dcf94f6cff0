package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/model"
	"docuchat/internal/pkg/pdfextract"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	maxPDFSize      int64
}

func NewDocumentHandler(documentService *app.DocumentService, maxPDFSizeMB int) *DocumentHandler {
	if maxPDFSizeMB <= 0 {
		maxPDFSizeMB = 10
	}
	return &DocumentHandler{
		documentService: documentService,
		maxPDFSize:      int64(maxPDFSizeMB) << 20,
	}
}

// Upload accepts a multipart "file" PDF, extracts its text, and stores it
// under the uploading manager. Employees get 403 before any file handling.
func (h *DocumentHandler) Upload(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	if identity.Role != model.RoleManager {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "only managers can upload documents")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to process PDF")
		return
	}
	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "PDF contains no extractable text")
		return
	}

	doc, err := h.documentService.Store(app.StoreDocumentInput{
		Filename: filepath.Base(file.Filename),
		Owner:    identity.Username,
		Role:     identity.Role,
		Text:     text,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "only managers can upload documents")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store document failed")
		}
		return
	}

	response.OK(c, documentView(*doc))
}

// List returns the metadata of every document the requester may read.
func (h *DocumentHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.documentService.ListAccessible(identity.Username, identity.Role)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	views := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		views = append(views, documentView(doc))
	}
	response.OK(c, views)
}

func documentView(doc model.Document) gin.H {
	return gin.H{
		"id":         doc.ID,
		"filename":   doc.Filename,
		"owner":      doc.Owner,
		"owner_role": doc.OwnerRole,
		"created_at": doc.CreatedAt,
	}
}
