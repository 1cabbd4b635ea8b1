package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/service"
)

func (s *Server) listWorkOrders(c *gin.Context) {
	filter := repository.WorkOrderFilter{
		Status: models.WorkOrderStatus(c.Query("status")),
		Type:   models.WorkOrderType(c.Query("type")),
		Search: c.Query("search"),
	}
	if raw := c.Query("property_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property_id"})
			return
		}
		v := uint(id)
		filter.PropertyID = &v
	}
	out, err := s.workOrders.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getWorkOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := s.workOrders.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) createWorkOrder(c *gin.Context) {
	var payload struct {
		PropertyID  uint     `json:"property_id" binding:"required"`
		Type        string   `json:"type" binding:"required"`
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		OfferAmount *float64 `json:"offer_amount"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wo, links, err := s.workOrders.Create(c.Request.Context(), currentUser(c), service.CreateWorkOrderInput{
		PropertyID:  payload.PropertyID,
		Type:        models.WorkOrderType(payload.Type),
		Title:       payload.Title,
		Description: payload.Description,
		OfferAmount: payload.OfferAmount,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"work_order": wo, "links": links})
}

func (s *Server) approveQuote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quoteID, ok := paramID(c, "quoteID")
	if !ok {
		return
	}
	var payload struct {
		ApprovedAmount float64 `json:"approved_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.workOrders.ApproveQuote(c.Request.Context(), currentUser(c), id, quoteID, payload.ApprovedAmount); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) selectInterest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	interestID, ok := paramID(c, "interestID")
	if !ok {
		return
	}
	links, err := s.workOrders.SelectInterest(c.Request.Context(), currentUser(c), id, interestID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (s *Server) mintPortalLink(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	links, err := s.workOrders.MintPortalLink(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"links": links})
}

func (s *Server) startWorkOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.workOrders.Start(c.Request.Context(), currentUser(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) requestRework(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.workOrders.RequestRework(c.Request.Context(), currentUser(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) approveProof(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.workOrders.ApproveProof(c.Request.Context(), currentUser(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) cancelWorkOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.workOrders.Cancel(c.Request.Context(), currentUser(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteWorkOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.workOrders.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
