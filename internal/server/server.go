package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/api"
	"salesanalytics/internal/config"
	"salesanalytics/internal/importer"
	"salesanalytics/internal/session"
	"salesanalytics/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  store.Backend
	ctrl   *session.Controller
	api    *api.Handler
}

// NewServer 按配置打开存储并创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	backend, err := store.Open(config.StoreOptions(cfg, dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	log.Printf("[server] store driver=%s data_dir=%s", cfg.Store.Driver, dataDir)

	return New(backend, cfg), nil
}

// New 以给定存储创建服务器
func New(backend store.Backend, cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	coordinator := importer.NewCoordinator(backend, importer.NewExclusionSet(cfg.Ingest.ExcludeCustomers...))
	ctrl := session.New(backend, coordinator)

	s := &Server{
		router: gin.Default(),
		store:  backend,
		ctrl:   ctrl,
		api:    api.NewHandler(ctrl, cfg.Ingest.MaxUploadMB),
	}
	s.setupRoutes(cfg.Server.DevMode)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.SessionHeader)
		c.Header("Access-Control-Expose-Headers", api.SessionHeader+", Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	}
}

// Handler 返回路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() store.Backend {
	return s.store
}
