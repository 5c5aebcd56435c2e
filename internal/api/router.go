package api

import (
	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/service"
)

// NewRouter wires all HTTP routes. Everything except registration and
// login sits behind bearer-token authentication.
func NewRouter(cfg *config.Config, authService *service.AuthService, auth *AuthHandlers, tasks *TaskHandlers) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	// Uploaded attachments are served straight off disk.
	r.Static("/storage", cfg.Storage.MediaDir)

	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)

	protected := r.Group("/", RequireAuth(authService))
	{
		protected.POST("/logout", auth.Logout)

		protected.GET("/projects/:project/tasks", tasks.Index)
		protected.POST("/projects/:project/tasks", tasks.Store)

		protected.GET("/tasks/:task", tasks.Show)
		protected.PUT("/tasks/:task", tasks.Update)
		protected.POST("/tasks/:task/update", tasks.Update)
		protected.DELETE("/tasks/:task", tasks.Destroy)
	}

	return r
}
