package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/service"
)

func (s *Server) login(c *gin.Context) {
	var payload struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, sess, err := s.auth.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.SetCookie(s.cookieName, sess.ID, int(s.auth.SessionTTL().Seconds()), "/", "", s.cookieSecure, true)
	c.JSON(http.StatusOK, user)
}

func (s *Server) logout(c *gin.Context) {
	sessionID, _ := c.Cookie(s.cookieName)
	if err := s.auth.Logout(c.Request.Context(), sessionID); err != nil {
		respondErr(c, err)
		return
	}
	c.SetCookie(s.cookieName, "", -1, "/", "", s.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type userPayload struct {
	Username   *string        `json:"username"`
	Password   *string        `json:"password"`
	Role       *string        `json:"role"`
	Name       *string        `json:"name"`
	CellNumber *string        `json:"cell_number"`
	Email      *string        `json:"email"`
	CPF        *string        `json:"cpf"`
	Display    models.JSONMap `json:"display"`
}

func (p userPayload) input() service.UserInput {
	return service.UserInput{
		Username:   p.Username,
		Password:   p.Password,
		Role:       p.Role,
		Name:       p.Name,
		CellNumber: p.CellNumber,
		Email:      p.Email,
		CPF:        p.CPF,
		Display:    p.Display,
	}
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.auth.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) createUser(c *gin.Context) {
	var payload userPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.auth.CreateUser(c.Request.Context(), payload.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload userPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.auth.UpdateUser(c.Request.Context(), id, payload.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.auth.DeleteUser(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// paramID parses a numeric path parameter, writing the 400 itself.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
