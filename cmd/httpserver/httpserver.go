// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/accountdelivery"
	"github.com/bankofkat/ledger/internal/accountservice"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/internal/middleware"
	"github.com/bankofkat/ledger/internal/transferdelivery"
	"github.com/bankofkat/ledger/internal/transferservice"
	"github.com/bankofkat/ledger/pkg/configpkg"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	store := ledgerrepo.NewStore(conn)

	transferService := transferservice.New(store)
	accountService := accountservice.New(store, transferService)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/accounts", accountHandler.Open)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.GET("/accounts/:id/transactions", accountHandler.ListTransactions)
	engine.GET("/account-types", accountHandler.ListTypes)

	engine.POST("/transfers", transferHandler.Create)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", moneypkg.ValidAmount); err != nil {
			return nil, errors.New("cannot register amount validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
