package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/service"
)

func (s *Server) portalView(c *gin.Context) {
	view, err := s.portal.View(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) portalSubmitQuote(c *gin.Context) {
	var payload struct {
		ProviderName  string            `json:"provider_name" binding:"required"`
		ProviderPhone string            `json:"provider_phone" binding:"required"`
		Lines         models.QuoteLines `json:"lines" binding:"required"`
		TotalAmount   float64           `json:"total_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := s.portal.SubmitQuote(c.Request.Context(), c.Param("token"), service.QuoteInput{
		ProviderName:  payload.ProviderName,
		ProviderPhone: payload.ProviderPhone,
		Lines:         payload.Lines,
		TotalAmount:   payload.TotalAmount,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (s *Server) portalSubmitInterest(c *gin.Context) {
	var payload struct {
		ProviderName  string `json:"provider_name" binding:"required"`
		ProviderPhone string `json:"provider_phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	interest, err := s.portal.SubmitInterest(c.Request.Context(), c.Param("token"), service.InterestInput{
		ProviderName:  payload.ProviderName,
		ProviderPhone: payload.ProviderPhone,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, interest)
}

// portalSubmitProof accepts multipart form data: the pix payment fields plus
// the evidence file.
func (s *Server) portalSubmitProof(c *gin.Context) {
	name, data, ok := formFile(c, "file")
	if !ok {
		return
	}
	in := service.ProofInput{
		ProviderName:    c.PostForm("provider_name"),
		ProviderPhone:   c.PostForm("provider_phone"),
		PixKeyType:      c.PostForm("pix_key_type"),
		PixKeyValue:     c.PostForm("pix_key_value"),
		PixReceiverName: c.PostForm("pix_receiver_name"),
		FileName:        name,
		File:            data,
	}
	proof, err := s.portal.SubmitProof(c.Request.Context(), c.Param("token"), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, proof)
}
