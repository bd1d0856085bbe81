// Package machine is handling candy machine records
package machine

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
)

var tracer = otel.Tracer("machine")

// Handler is the interface for handling HTTP requests
type Handler interface {
	Create(c echo.Context) error
	GetAll(c echo.Context) error
	Get(c echo.Context) error
	Update(c echo.Context) error
	Mint(c echo.Context) error
	GetByCreator(c echo.Context) error
	UpdateStatus(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// Create registers a new candy machine
func (h handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.Create")
	defer span.End()

	var request core.CandyMachine
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": err.Error()})
	}
	if request.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "id is required"})
	}
	if request.ItemsAvailable < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "itemsAvailable must not be negative"})
	}

	created, err := h.service.Create(ctx, request)
	if err != nil {
		if errors.Is(err, core.ErrorAlreadyExists{}) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Machine already exists"})
		}
		if errors.Is(err, core.ErrorInvalidStatus{}) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": created})
}

// GetAll returns all active candy machines
func (h handler) GetAll(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.GetAll")
	defer span.End()

	machines, err := h.service.GetAll(ctx)
	if err != nil {
		return err
	}
	if machines == nil {
		machines = []core.CandyMachine{}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": machines})
}

// Get returns a candy machine by address
func (h handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.Get")
	defer span.End()

	id := c.Param("id")
	machine, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Machine not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": machine})
}

// Update edits the display fields of a candy machine
func (h handler) Update(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.Update")
	defer span.End()

	var request core.CandyMachine
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": err.Error()})
	}
	request.ID = c.Param("id")

	updated, err := h.service.Update(ctx, request)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Machine not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": updated})
}

// Mint bumps the minted counter of a candy machine by one
func (h handler) Mint(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.Mint")
	defer span.End()

	id := c.Param("id")
	updated, err := h.service.IncrementMinted(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Machine not found"})
		}
		if errors.Is(err, core.ErrorSoldOut{}) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Machine is sold out"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": updated})
}

// GetByCreator returns all active candy machines owned by a creator
func (h handler) GetByCreator(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.GetByCreator")
	defer span.End()

	address := c.Param("address")
	machines, err := h.service.GetByCreator(ctx, address)
	if err != nil {
		return err
	}
	if machines == nil {
		machines = []core.CandyMachine{}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": machines})
}

// UpdateStatus sets the lifecycle status of a candy machine
func (h handler) UpdateStatus(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Machine.Handler.UpdateStatus")
	defer span.End()

	var request statusRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": err.Error()})
	}

	updated, err := h.service.UpdateStatus(ctx, c.Param("id"), request.Status)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Machine not found"})
		}
		if errors.Is(err, core.ErrorInvalidStatus{}) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": updated})
}
