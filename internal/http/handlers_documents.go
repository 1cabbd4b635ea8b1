package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/service"
)

func (s *Server) listDocuments(c *gin.Context) {
	var propertyID *uint
	if raw := c.Query("property_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property_id"})
			return
		}
		v := uint(id)
		propertyID = &v
	}
	docs, err := s.documents.List(c.Request.Context(), currentUser(c), propertyID, c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) getDocument(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doc, err := s.documents.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) uploadDocument(c *gin.Context) {
	raw := c.PostForm("property_id")
	propertyID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property_id"})
		return
	}
	name, data, ok := formFile(c, "file")
	if !ok {
		return
	}
	doc, err := s.documents.Upload(c.Request.Context(), currentUser(c).ID, uint(propertyID), name, data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) processDocument(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doc, err := s.documents.Process(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) reviewDocument(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		DocType string         `json:"doc_type"`
		Fields  models.JSONMap `json:"fields"`
		Summary string         `json:"summary"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ext, err := s.documents.Review(c.Request.Context(), currentUser(c).ID, id, service.ReviewInput{
		DocType: payload.DocType,
		Fields:  payload.Fields,
		Summary: payload.Summary,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ext)
}

func (s *Server) getExtraction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ext, err := s.documents.Extraction(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ext)
}

func (s *Server) deleteDocument(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.documents.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := s.activity.List(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
