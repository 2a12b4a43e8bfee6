package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"SmartRoute/Geocoder"
	"SmartRoute/RouteOptimizer"
)

var (
	errInvalidBody     = errors.New("invalid request body")
	errInvalidWorkbook = errors.New("invalid workbook")
)

// classify maps an error to the HTTP status and the "status" field of the
// error body.
func classify(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, "InvalidRequest"
	case errors.Is(err, errInvalidWorkbook):
		return fiber.StatusBadRequest, "InvalidWorkbook"
	case errors.Is(err, Geocoder.ErrNotFound):
		return fiber.StatusNotFound, "NotFound"
	case errors.Is(err, Geocoder.ErrMissingAPIKey):
		return fiber.StatusServiceUnavailable, "GeocoderUnavailable"
	case errors.Is(err, Geocoder.ErrLookupFailed):
		return fiber.StatusBadGateway, "LookupFailed"
	}

	kind := RouteOptimizer.ErrorKind(err)
	switch kind {
	case "Timeout":
		return fiber.StatusGatewayTimeout, kind
	case "Canceled":
		return fiber.StatusServiceUnavailable, kind
	case "InternalError":
		return fiber.StatusInternalServerError, kind
	default:
		return fiber.StatusBadRequest, kind
	}
}

func (rc *RouteController) fail(ctx *fiber.Ctx, err error) error {
	return writeError(ctx, rc.Log, err)
}

func writeError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	status, kind := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("path", ctx.Path()), zap.String("status", kind), zap.Error(err))
	}
	return ctx.Status(status).JSON(fiber.Map{
		"status": kind,
		"error":  err.Error(),
	})
}
