package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/service"
)

type propertyPayload struct {
	OwnerUserID   *uint          `json:"owner_user_id"`
	Tag           *string        `json:"tag"`
	Address       *string        `json:"address"`
	Bedrooms      *int           `json:"bedrooms"`
	Bathrooms     *int           `json:"bathrooms"`
	ParkingSpaces *int           `json:"parking_spaces"`
	IsRented      *bool          `json:"is_rented"`
	DesiredRent   *float64       `json:"desired_rent"`
	CurrentRent   *float64       `json:"current_rent"`
	Display       models.JSONMap `json:"display"`
}

func (p propertyPayload) input() service.PropertyInput {
	return service.PropertyInput{
		OwnerUserID:   p.OwnerUserID,
		Tag:           p.Tag,
		Address:       p.Address,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		ParkingSpaces: p.ParkingSpaces,
		IsRented:      p.IsRented,
		DesiredRent:   p.DesiredRent,
		CurrentRent:   p.CurrentRent,
		Display:       p.Display,
	}
}

func (s *Server) listProperties(c *gin.Context) {
	props, err := s.properties.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (s *Server) getProperty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	prop, err := s.properties.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (s *Server) createProperty(c *gin.Context) {
	var payload propertyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := s.properties.Create(c.Request.Context(), payload.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}

func (s *Server) updateProperty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload propertyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := s.properties.Update(c.Request.Context(), id, payload.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (s *Server) deleteProperty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.properties.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addPropertyPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	name, data, ok := formFile(c, "file")
	if !ok {
		return
	}
	prop, err := s.properties.AddPhoto(c.Request.Context(), id, name, data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (s *Server) removePropertyPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	prop, err := s.properties.RemovePhoto(c.Request.Context(), id, index)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// importPreview runs the extraction pipeline synchronously over the uploaded
// file and returns the result without storing anything.
func (s *Server) importPreview(c *gin.Context) {
	name, data, ok := formFile(c, "file")
	if !ok {
		return
	}
	result, err := s.imports.Preview(c.Request.Context(), currentUser(c).ID, name, data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// formFile reads one multipart upload into memory, writing the 400 itself.
func formFile(c *gin.Context, field string) (string, []byte, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return "", nil, false
	}
	return header.Filename, data, true
}
