package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/operator"
)

// StatusSource reports the progress of the current run.
type StatusSource interface {
	Status() dto.StatusResponse
}

// ConfirmationQueue holds operator confirmations awaiting a remote decision.
type ConfirmationQueue interface {
	Pending() []operator.Request
	Resolve(id string, approve bool) error
}

// ControlHandler serves run status and operator confirmations.
type ControlHandler struct {
	status StatusSource
	queue  ConfirmationQueue
	logger logging.Logger
}

// NewControlHandler constructs a ControlHandler. queue may be nil when
// confirmations are not taken over HTTP.
func NewControlHandler(status StatusSource, queue ConfirmationQueue, logger logging.Logger) *ControlHandler {
	return &ControlHandler{status: status, queue: queue, logger: logging.OrDiscard(logger)}
}

// Status returns a snapshot of the current run.
func (h *ControlHandler) Status(c echo.Context) error {
	return Success(c, http.StatusOK, "", h.status.Status())
}

// Pending lists the confirmations waiting for an operator.
func (h *ControlHandler) Pending(c echo.Context) error {
	items := []dto.PendingConfirmation{}
	if h.queue != nil {
		for _, req := range h.queue.Pending() {
			items = append(items, dto.PendingConfirmation{ID: req.ID, Prompt: req.Prompt, CreatedAt: req.CreatedAt})
		}
	}
	return Success(c, http.StatusOK, "", items)
}

// Confirm approves or rejects a pending confirmation.
func (h *ControlHandler) Confirm(c echo.Context) error {
	if h.queue == nil {
		return Error(c, http.StatusConflict, "operator confirmations are not handled by this server")
	}

	var req dto.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Approve == nil {
		return Error(c, http.StatusBadRequest, "approve is required")
	}

	if err := h.queue.Resolve(req.ID, *req.Approve); err != nil {
		if errors.Is(err, operator.ErrUnknownRequest) {
			return Error(c, http.StatusNotFound, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to resolve confirmation")
	}

	h.logger.WithFields(logging.Fields{"id": req.ID, "approve": *req.Approve}).Info("operator confirmation resolved")
	return Success(c, http.StatusOK, "confirmation resolved", nil)
}
