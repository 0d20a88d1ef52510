package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/identity"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Projects           *services.ProjectService
	Tasks              *services.TaskService
	Users              *services.UserService
	Verifier           identity.Verifier
	Pages              pagination.Options
	RateLimitPerMinute int
	Logger             *slog.Logger
}

// Server owns the gin engine and the route table.
type Server struct {
	engine   *gin.Engine
	logger   *slog.Logger
	verifier identity.Verifier
	projects *handlers.ProjectHandler
	tasks    *handlers.TaskHandler
	users    *handlers.UserHandler
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimiter(deps.RateLimitPerMinute, time.Minute))

	srv := &Server{
		engine:   router,
		logger:   logger,
		verifier: deps.Verifier,
		projects: handlers.NewProjectHandler(deps.Projects, deps.Pages, logger),
		tasks:    handlers.NewTaskHandler(deps.Tasks, deps.Pages, logger),
		users:    handlers.NewUserHandler(deps.Users, logger),
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	requireAuth := middleware.RequireAuth(s.verifier, s.logger)

	s.engine.GET("/health", s.handleHealth)

	users := s.engine.Group("/users")
	{
		users.POST("/login", s.users.Login)
		users.GET("/:username", requireAuth, s.users.GetUser)
	}

	projects := s.engine.Group("/projects")
	projects.Use(requireAuth)
	{
		projects.GET("", s.projects.ListProjects)
		projects.POST("", s.projects.CreateProject)
		projects.GET("/:id", s.projects.GetProject)
		projects.PUT("/:id", s.projects.UpdateProject)
		projects.DELETE("/:id", s.projects.DeleteProject)

		projects.GET("/:id/tasks", s.tasks.ListTasks)
		projects.POST("/:id/tasks", s.tasks.CreateTask)
		projects.GET("/:id/tasks/:taskId", s.tasks.GetTask)
		projects.PUT("/:id/tasks/:taskId", s.tasks.UpdateTask)
		projects.DELETE("/:id/tasks/:taskId", s.tasks.DeleteTask)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Project Management API is running",
	})
}
