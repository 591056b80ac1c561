package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"microschool-crm/config"
	"microschool-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListDocumentsHandler returns documents, optionally filtered by family
// or status.
func ListDocumentsHandler(c *gin.Context) {
	var docs []models.Document
	var totalRows int64

	query := config.DB.Model(&models.Document{}).Order("created_at DESC")
	if familyID := c.Query("family_id"); familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count documents"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}
	if docs == nil {
		docs = make([]models.Document, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, docs, totalRows))
}

type DocumentInput struct {
	FamilyID     uint       `json:"familyId" binding:"required"`
	EnrollmentID *uint      `json:"enrollmentId"`
	Title        string     `json:"title" binding:"required"`
	Kind         string     `json:"kind"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

func CreateDocumentHandler(c *gin.Context) {
	var input DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var family models.Family
	if err := config.DB.First(&family, input.FamilyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}

	doc := models.Document{
		FamilyID:     input.FamilyID,
		EnrollmentID: input.EnrollmentID,
		Title:        input.Title,
		Kind:         input.Kind,
		Status:       models.DocumentDraft,
		ExpiresAt:    input.ExpiresAt,
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UploadDocumentFileHandler attaches an uploaded file to a document record.
// Files land under the documents base dir with a generated name; the
// original name survives only as the extension.
func UploadDocumentFileHandler(c *gin.Context) {
	var doc models.Document
	if err := config.DB.First(&doc, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file in request"})
		return
	}

	dir := documentsBaseDir()
	if err := ensureDir(dir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not prepare storage directory"})
		return
	}

	storedName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	storedPath := filepath.Join(dir, storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	doc.FilePath = storedPath
	if err := config.DB.Save(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func DownloadDocumentFileHandler(c *gin.Context) {
	var doc models.Document
	if err := config.DB.First(&doc, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if !fileExists(doc.FilePath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document has no stored file"})
		return
	}
	c.FileAttachment(doc.FilePath, filepath.Base(doc.FilePath))
}

// allowed status moves; expired can be set from any non-terminal state
var documentTransitions = map[string][]string{
	models.DocumentDraft: {models.DocumentSent, models.DocumentExpired},
	models.DocumentSent:  {models.DocumentSigned, models.DocumentExpired},
}

// UpdateDocumentStatusHandler moves a document through its lifecycle:
// draft -> sent -> signed, with expired reachable until signed.
func UpdateDocumentStatusHandler(c *gin.Context) {
	var doc models.Document
	if err := config.DB.First(&doc, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := false
	for _, next := range documentTransitions[doc.Status] {
		if next == body.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot move document from %q to %q", doc.Status, body.Status),
		})
		return
	}

	now := time.Now()
	doc.Status = body.Status
	switch body.Status {
	case models.DocumentSent:
		doc.SentAt = &now
	case models.DocumentSigned:
		doc.SignedAt = &now
	}

	if err := config.DB.Save(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document status"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func DeleteDocumentHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.Document{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
