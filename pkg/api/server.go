// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/floower/bloom-core/pkg/control"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/logger"
	"github.com/floower/bloom-core/pkg/metrics"
)

// Loop is what the API needs from the control loop.
type Loop interface {
	SubmitTouch(event blooming.TouchEvent) error
	GetSnapshot() (control.SystemSnapshot, bool)
}

// Server is the HTTP control API of one flower. Touches are only queued;
// the control loop applies them on its own goroutine.
type Server struct {
	loop       Loop
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.SugaredLogger
	instance   string
}

// NewServer creates the API server listening on addr. It does not start listening.
func NewServer(addr string, instance string, loop Loop) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		loop:     loop,
		instance: instance,
		logger:   logger.For(logger.ComponentAPI),
	}

	metrics.InitErrorCounter(metrics.ComponentAPI, instance)

	router := gin.New()

	// Logs all requests like a combined access and error log, with UTC RFC3339 timestamps
	router.Use(ginzap.Ginzap(s.logger.Desugar(), time.RFC3339, true))

	// Logs all panics to the error log including the stack
	router.Use(ginzap.RecoveryWithZap(s.logger.Desugar(), true))

	// Healthcheck
	router.GET("/healthz", s.healthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/touch", s.touchHandler)
		v1.GET("/state", gzip.Gzip(gzip.DefaultCompression), s.stateHandler)
		v1.GET("/states", s.statesHandler)
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks until the server is shut down. A regular shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("Control API listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control API failed: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
