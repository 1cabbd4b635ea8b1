package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rented/backend/internal/models"
)

const userKey = "current_user"

// requireSession resolves the session cookie and stores the user on the
// request context.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(s.cookieName)
		user, err := s.auth.Authenticate(c.Request.Context(), sessionID)
		if err != nil {
			respondErr(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// requireAdmin gates user administration endpoints.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin_only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireStaff excludes property owners from write endpoints.
func (s *Server) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role == models.RolePropertyOwner {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff_only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	u, _ := c.Get(userKey)
	return u.(*models.User)
}
