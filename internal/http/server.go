// Package http exposes the staff API, the public portal endpoints and the
// upload file server.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/service"
	"github.com/rented/backend/internal/storage"
)

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine *gin.Engine

	auth       *service.AuthService
	properties *service.PropertyService
	documents  *service.DocumentService
	workOrders *service.WorkOrderService
	portal     *service.PortalService
	activity   *service.ActivityService
	imports    *service.ImportService
	blobs      *storage.Store

	cookieName   string
	cookieSecure bool
	log          zerolog.Logger
}

// Options carries the cookie settings the server needs beyond its services.
type Options struct {
	CookieName   string
	CookieSecure bool
}

// NewServer constructs a new API server and registers routes.
func NewServer(
	auth *service.AuthService,
	properties *service.PropertyService,
	documents *service.DocumentService,
	workOrders *service.WorkOrderService,
	portal *service.PortalService,
	activity *service.ActivityService,
	imports *service.ImportService,
	blobs *storage.Store,
	opts Options,
	log zerolog.Logger,
) *Server {
	router := gin.Default()
	srv := &Server{
		Engine:       router,
		auth:         auth,
		properties:   properties,
		documents:    documents,
		workOrders:   workOrders,
		portal:       portal,
		activity:     activity,
		imports:      imports,
		blobs:        blobs,
		cookieName:   opts.CookieName,
		cookieSecure: opts.CookieSecure,
		log:          log,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.Engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.Engine.POST("/auth/login", s.login)
	s.Engine.POST("/auth/logout", s.logout)

	api := s.Engine.Group("/api", s.requireSession())
	api.GET("/me", s.me)

	users := api.Group("/users", s.requireAdmin())
	users.GET("", s.listUsers)
	users.POST("", s.createUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)

	api.GET("/properties", s.listProperties)
	api.GET("/properties/:id", s.getProperty)
	props := api.Group("/properties", s.requireStaff())
	props.POST("", s.createProperty)
	props.PUT("/:id", s.updateProperty)
	props.DELETE("/:id", s.deleteProperty)
	props.POST("/:id/photos", s.addPropertyPhoto)
	props.DELETE("/:id/photos/:index", s.removePropertyPhoto)
	api.POST("/import-preview", s.requireStaff(), s.importPreview)

	api.GET("/documents", s.listDocuments)
	api.GET("/documents/:id", s.getDocument)
	api.GET("/documents/:id/extraction", s.getExtraction)
	docs := api.Group("/documents", s.requireStaff())
	docs.POST("", s.uploadDocument)
	docs.POST("/:id/process", s.processDocument)
	docs.POST("/:id/review", s.reviewDocument)
	docs.DELETE("/:id", s.deleteDocument)

	api.GET("/work-orders", s.listWorkOrders)
	api.GET("/work-orders/:id", s.getWorkOrder)
	wos := api.Group("/work-orders", s.requireStaff())
	wos.POST("", s.createWorkOrder)
	wos.POST("/:id/approve-quote/:quoteID", s.approveQuote)
	wos.POST("/:id/select-interest/:interestID", s.selectInterest)
	wos.POST("/:id/tokens", s.mintPortalLink)
	wos.POST("/:id/start", s.startWorkOrder)
	wos.POST("/:id/request-rework", s.requestRework)
	wos.POST("/:id/approve-proof", s.approveProof)
	wos.POST("/:id/cancel", s.cancelWorkOrder)
	wos.DELETE("/:id", s.deleteWorkOrder)

	api.GET("/activity-log", s.listActivity)

	portal := s.Engine.Group("/portal/work-orders/:token")
	portal.GET("", s.portalView)
	portal.POST("/quote", s.portalSubmitQuote)
	portal.POST("/interest", s.portalSubmitInterest)
	portal.POST("/submit-proof", s.portalSubmitProof)

	s.Engine.GET("/uploads/:filename", s.serveUpload)
}

func (s *Server) serveUpload(c *gin.Context) {
	path, err := s.blobs.Resolve(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.File(path)
}
