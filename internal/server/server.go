package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/config"
	"travel-backoffice/internal/database"
	"travel-backoffice/internal/quote"
	"travel-backoffice/internal/storage"
)

type Server struct {
	cfg      *config.Config
	db       database.Service
	auth     *auth.Service
	checkout *checkout.Service
	// storage is nil when no bucket is configured.
	storage storage.Uploader
	pdf     quote.PDFRenderer
	limiter *rateLimiter
	logger  *logrus.Logger
}

// Deps are the collaborators built by main.
type Deps struct {
	DB       database.Service
	Auth     *auth.Service
	Checkout *checkout.Service
	Storage  storage.Uploader
	PDF      quote.PDFRenderer
	Logger   *logrus.Logger
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	s := &Server{
		cfg:      cfg,
		db:       deps.DB,
		auth:     deps.Auth,
		checkout: deps.Checkout,
		storage:  deps.Storage,
		pdf:      deps.PDF,
		limiter:  newRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst),
		logger:   deps.Logger,
	}

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  cfg.Server.IdleTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
