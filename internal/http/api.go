package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"password-dashboard/internal/service"
)

// Dependencies collects what the HTTP layer needs from the rest of the app.
type Dependencies struct {
	Users       service.UserService
	Credentials service.CredentialService
	Resets      service.ResetService
	Sessions    service.SessionService
	Captures    service.CaptureService
	Logger      *logrus.Logger

	// SecureCookies marks session and flash cookies Secure.
	SecureCookies bool
	// CORSOrigin is allowed to call the capture endpoint. Defaults to "*".
	CORSOrigin string
	// PicturesDir is served under PicturesPrefix when profile pictures are
	// stored on the local filesystem. Empty disables the static route.
	PicturesDir    string
	PicturesPrefix string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	credentials service.CredentialService
	resets      service.ResetService
	sessions    service.SessionService
	captures    service.CaptureService
	logger      *logrus.Logger

	secureCookies  bool
	corsOrigin     string
	picturesDir    string
	picturesPrefix string
}

func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	origin := deps.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	prefix := deps.PicturesPrefix
	if prefix == "" {
		prefix = "/static/profile_pics"
	}
	return &Handler{
		users:          deps.Users,
		credentials:    deps.Credentials,
		resets:         deps.Resets,
		sessions:       deps.Sessions,
		captures:       deps.Captures,
		logger:         logger,
		secureCookies:  deps.SecureCookies,
		corsOrigin:     origin,
		picturesDir:    deps.PicturesDir,
		picturesPrefix: prefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(loadTemplates())
	router.Use(h.requestLogger(), h.loadSession())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	if h.picturesDir != "" {
		router.Static(h.picturesPrefix, h.picturesDir)
	}

	router.GET("/", h.home)
	router.GET("/home", h.home)
	router.GET("/logout", h.logout)

	public := router.Group("/", h.redirectIfAuthenticated())
	{
		public.GET("/register", h.registerPage)
		public.POST("/register", h.register)
		public.GET("/login", h.loginPage)
		public.POST("/login", h.login)
		public.GET("/reset_password", h.resetRequestPage)
		public.POST("/reset_password", h.resetRequest)
		public.GET("/reset_password/:token", h.resetTokenPage)
		public.POST("/reset_password/:token", h.resetToken)
	}

	private := router.Group("/", h.requireSession())
	{
		private.GET("/manager", h.manager)
		private.GET("/manager/add", h.addPage)
		private.POST("/manager/add", h.add)
		private.GET("/manager/display", h.display)
		private.POST("/manager/display", h.display)
		private.GET("/manager/account", h.accountPage)
		private.POST("/manager/account", h.account)
		private.GET("/delete/:id", h.sameSiteOnly(), h.delete)
		private.GET("/update/:id", h.updatePage)
		private.POST("/update/:id", h.update)
		private.GET("/generate_password", h.generatePage)
		private.POST("/generate_password", h.generate)
	}

	extension := router.Group("/", h.corsMiddleware())
	{
		extension.POST("/save_password", h.savePassword)
		extension.OPTIONS("/save_password", func(c *gin.Context) {})
	}

	router.NoRoute(func(c *gin.Context) {
		h.renderError(c, http.StatusNotFound, nil)
	})
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", h.corsOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
