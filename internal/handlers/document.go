package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chantierly/visadoc/internal/middleware"
	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/internal/storage"
	"github.com/chantierly/visadoc/pkg/response"
)

type DocumentHandler struct {
	workflow *services.WorkflowService
	blobs    storage.Store
}

func NewDocumentHandler(db *gorm.DB, access *services.AccessService, notifier *services.NotificationService, blobs storage.Store) *DocumentHandler {
	return &DocumentHandler{
		workflow: services.NewWorkflowService(db, access, notifier),
		blobs:    blobs,
	}
}

// Create creates a document in draft status, optionally with an uploaded
// file. Accepts multipart form (file upload) or plain JSON (external URL).
// POST /api/projects/:id/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	req := services.CreateDocumentRequest{ProjectID: projectID}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Title = c.PostForm("title")
		req.Type = c.PostForm("type")
		req.ExternalURL = c.PostForm("external_url")
		if recipients := c.PostForm("recipients"); recipients != "" {
			req.Recipients = strings.Split(recipients, ",")
		}
		if req.Title == "" {
			response.BadRequest(c, "title is required")
			return
		}

		file, _, err := c.Request.FormFile("file")
		if err == nil {
			defer file.Close()
			key, err := h.blobs.Put(c.Request.Context(), file)
			if err != nil {
				response.ServerError(c, "file upload failed: "+err.Error())
				return
			}
			req.BlobKey = key
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		req.ProjectID = projectID
	}

	doc, err := h.workflow.Create(&req, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, doc)
}

// List returns a project's documents
// GET /api/projects/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	docs, err := h.workflow.ListByProject(middleware.GetUserID(c), projectID, c.Query("status"))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, docs)
}

// GetByID returns a document
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := h.workflow.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, doc)
}

// Download streams the document's file content
// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := h.workflow.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if doc.BlobKey == "" {
		response.NotFound(c, "document has no file attached")
		return
	}

	rc, err := h.blobs.Get(c.Request.Context(), doc.BlobKey)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			response.NotFound(c, "file content not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.Title+`"`)
	c.DataFromReader(200, -1, "application/octet-stream", rc, nil)
}

// Transition applies a workflow action to a document
// POST /api/documents/:id/transition
func (h *DocumentHandler) Transition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Action  string `json:"action" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.workflow.Transition(id, middleware.GetUserID(c), req.Action, req.Comment)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, doc)
}

// History returns a document's full audit trail
// GET /api/documents/:id/history
func (h *DocumentHandler) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	entries, err := h.workflow.History(middleware.GetUserID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, entries)
}

// Delete removes a document and its history
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	doc, err := h.workflow.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	if err := h.workflow.Delete(middleware.GetUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}

	// Blob removal is best-effort; the database rows are authoritative.
	if doc.BlobKey != "" {
		_ = h.blobs.Delete(c.Request.Context(), doc.BlobKey)
	}

	response.Success(c, gin.H{"message": "document deleted"})
}
