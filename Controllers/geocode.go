package Controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"SmartRoute/Geocoder"
)

type GeocodeRequest struct {
	Location string `json:"location" validate:"required"`
}

// GeocodeController handles place name lookups
type GeocodeController struct {
	Geocoder  Geocoder.Geocoder
	Log       *zap.Logger
	validator *Validator
}

// NewGeocodeController creates a new GeocodeController
func NewGeocodeController(g Geocoder.Geocoder, log *zap.Logger) *GeocodeController {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeocodeController{Geocoder: g, Log: log, validator: NewValidator()}
}

// Geocode resolves a single location name
func (gc *GeocodeController) Geocode(ctx *fiber.Ctx) error {
	var req GeocodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return writeError(ctx, gc.Log, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	if err := gc.validator.Struct(req); err != nil {
		return writeError(ctx, gc.Log, err)
	}
	if gc.Geocoder == nil {
		return writeError(ctx, gc.Log, Geocoder.ErrMissingAPIKey)
	}

	loc, err := gc.Geocoder.Geocode(ctx.UserContext(), req.Location)
	if err != nil {
		return writeError(ctx, gc.Log, fmt.Errorf("%q: %w", req.Location, err))
	}
	return ctx.JSON(loc)
}
