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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/floower/bloom-core/pkg/constants"
	"github.com/floower/bloom-core/pkg/control"
	"github.com/floower/bloom-core/pkg/fsm/blooming"
	"github.com/floower/bloom-core/pkg/metrics"
)

type touchRequest struct {
	Event string `json:"event"`
}

type touchResponse struct {
	Event  string `json:"event"`
	Queued bool   `json:"queued"`
}

// ---------------------- touch ----------------------

func (s *Server) touchHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.handleInvalidInputError(c, fmt.Errorf("failed to read body: %w", err))

		return
	}

	var request touchRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.handleInvalidInputError(c, fmt.Errorf("failed to decode body: %w", err))

		return
	}

	event, err := blooming.ParseTouchEvent(request.Event)
	if err != nil {
		s.handleInvalidInputError(c, err)

		return
	}

	if err := s.loop.SubmitTouch(event); err != nil {
		if errors.Is(err, control.ErrTouchQueueFull) {
			s.handleUnavailable(c, err)

			return
		}

		s.handleInvalidInputError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, touchResponse{Event: event.String(), Queued: true})
}

// ---------------------- state ----------------------

func (s *Server) stateHandler(c *gin.Context) {
	snapshot, ok := s.loop.GetSnapshot()
	if !ok {
		s.handleUnavailable(c, errors.New("control loop has not published a snapshot yet"))

		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.handleInternalServerError(c, err)

		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) statesHandler(c *gin.Context) {
	states := blooming.AllStates()

	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, state.String())
	}

	c.JSON(http.StatusOK, names)
}

// ---------------------- health ----------------------

// healthHandler reports unhealthy when the control loop stopped publishing.
func (s *Server) healthHandler(c *gin.Context) {
	snapshot, ok := s.loop.GetSnapshot()
	if !ok {
		s.handleUnavailable(c, errors.New("control loop has not started"))

		return
	}

	if age := time.Since(snapshot.SnapshotTime); age > constants.StarvationThreshold {
		s.handleUnavailable(c, fmt.Errorf("last snapshot is %s old", age.Round(time.Millisecond)))

		return
	}

	c.String(http.StatusOK, "online")
}

// ---------------------- errors ----------------------

func (s *Server) handleInvalidInputError(c *gin.Context, err error) {
	s.logger.Debugw("Invalid input error", "error", err)

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   err.Error(),
		"status":  http.StatusBadRequest,
		"message": "You have provided a wrong input. Please check your parameters.",
	})
}

func (s *Server) handleUnavailable(c *gin.Context, err error) {
	s.logger.Debugw("Service unavailable", "error", err)

	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   err.Error(),
		"status":  http.StatusServiceUnavailable,
		"message": "The flower cannot take this request right now. Try again later.",
	})
}

func (s *Server) handleInternalServerError(c *gin.Context, err error) {
	metrics.IncErrorCountAndLog(metrics.ComponentAPI, s.instance, err, s.logger)

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   err.Error(),
		"status":  http.StatusInternalServerError,
		"message": "The server had an internal error.",
	})
}
