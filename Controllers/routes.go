package Controllers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"SmartRoute/Config"
	"SmartRoute/Excel"
	"SmartRoute/Geocoder"
	"SmartRoute/Observability"
	"SmartRoute/RouteOptimizer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OptimizeRequest is the body of /api/optimize and /api/optimize/export.
// Points are used as given; Locations are looked up in Coordinates first and
// geocoded otherwise, then appended after Points.
type OptimizeRequest struct {
	Points      []RouteOptimizer.Point `json:"points"`
	Locations   []string               `json:"locations" validate:"omitempty,dive,required"`
	Coordinates map[string][]float64   `json:"coordinates" validate:"omitempty,dive,len=2"`
	Closed      *bool                  `json:"closed"`
	Algorithm   string                 `json:"algorithm" validate:"omitempty,algorithm"`
	TravelMode  string                 `json:"travel_mode" validate:"omitempty,travelmode"`
	// RenameDuplicates suffixes repeated names instead of rejecting them.
	RenameDuplicates bool `json:"rename_duplicates"`
}

// TSPRequest is the legacy /api/tsp body. Tours are always closed.
type TSPRequest struct {
	Locations   []string             `json:"locations" validate:"omitempty,dive,required"`
	Coordinates map[string][]float64 `json:"coordinates" validate:"omitempty,dive,len=2"`
	Mode        string               `json:"mode" validate:"omitempty,oneof=basic optimized"`
	TravelMode  string               `json:"travel_mode" validate:"omitempty,travelmode"`
}

type OptimizeResponse struct {
	Status           string                    `json:"status"`
	Order            []string                  `json:"order"`
	TotalDistance    float64                   `json:"total_distance"`
	InitialDistance  float64                   `json:"initial_distance"`
	EstimatedTime    float64                   `json:"estimated_time"`
	FormattedTime    string                    `json:"formatted_time"`
	SummaryMessage   string                    `json:"summary_message"`
	RouteCoordinates []RouteOptimizer.Point    `json:"route_coordinates"`
	GoogleMapsURL    string                    `json:"google_maps_url"`
	TravelMode       RouteOptimizer.TravelMode `json:"travel_mode"`
	Algorithm        RouteOptimizer.Algorithm  `json:"algorithm"`
	Closed           bool                      `json:"closed"`
	Iterations       int                       `json:"iterations"`
	Converged        bool                      `json:"converged"`
	Message          string                    `json:"message"`
}

// RouteController serves the optimization endpoints.
type RouteController struct {
	Geocoder    Geocoder.Geocoder
	Metrics     *Observability.Collector
	Log         *zap.Logger
	Cfg         Config.OptimizerConfig
	Concurrency int
	defaults    RouteOptimizer.Options
	validator   *Validator
}

// NewRouteController wires the controller. g may be nil when no geocoding
// provider is configured; requests then need coordinates for every name.
func NewRouteController(g Geocoder.Geocoder, cfg *Config.Config, metrics *Observability.Collector, log *zap.Logger) *RouteController {
	if log == nil {
		log = zap.NewNop()
	}
	return &RouteController{
		Geocoder:    g,
		Metrics:     metrics,
		Log:         log,
		Cfg:         cfg.Optimizer,
		Concurrency: cfg.Geocoder.Concurrency,
		defaults:    cfg.OptimizerOptions(),
		validator:   NewValidator(),
	}
}

// Optimize handles POST /api/optimize.
func (rc *RouteController) Optimize(ctx *fiber.Ctx) error {
	var req OptimizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return rc.fail(ctx, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	res, summary, err := rc.run(ctx.UserContext(), req)
	if err != nil {
		return rc.fail(ctx, err)
	}
	return ctx.JSON(respond(res, summary))
}

// TSP handles the legacy POST /api/tsp. "basic" is a plain nearest-neighbour
// tour and "optimized" the multi-start search.
func (rc *RouteController) TSP(ctx *fiber.Ctx) error {
	var req TSPRequest
	if err := ctx.BodyParser(&req); err != nil {
		return rc.fail(ctx, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	if err := rc.validator.Struct(req); err != nil {
		return rc.fail(ctx, err)
	}
	algorithm := RouteOptimizer.AlgorithmNearest
	if req.Mode == "optimized" {
		algorithm = RouteOptimizer.AlgorithmMultiStart
	}
	closed := true
	res, summary, err := rc.run(ctx.UserContext(), OptimizeRequest{
		Locations:   req.Locations,
		Coordinates: req.Coordinates,
		Closed:      &closed,
		Algorithm:   string(algorithm),
		TravelMode:  req.TravelMode,
	})
	if err != nil {
		return rc.fail(ctx, err)
	}
	return ctx.JSON(respond(res, summary))
}

// Export handles POST /api/optimize/export and returns the route as xlsx.
func (rc *RouteController) Export(ctx *fiber.Ctx) error {
	var req OptimizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return rc.fail(ctx, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	res, summary, err := rc.run(ctx.UserContext(), req)
	if err != nil {
		return rc.fail(ctx, err)
	}

	excelBuffer, err := Excel.WriteRoute(res, summary)
	if err != nil {
		rc.Log.Error("route export failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "InternalError",
			"error":  "Failed to build workbook",
		})
	}

	filename := fmt.Sprintf("route_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(excelBuffer.Bytes())
}

// Upload handles POST /api/optimize/upload with a multipart "file" workbook.
func (rc *RouteController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return rc.fail(ctx, fmt.Errorf("%w: no file provided, upload an .xlsx workbook", errInvalidBody))
	}
	src, err := file.Open()
	if err != nil {
		return rc.fail(ctx, fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	points, err := Excel.ReadPoints(src)
	switch {
	case errors.Is(err, Excel.ErrNoPoints):
		return rc.fail(ctx, fmt.Errorf("%w: %v", RouteOptimizer.ErrEmptyInput, err))
	case err != nil:
		return rc.fail(ctx, fmt.Errorf("%w: %v", errInvalidWorkbook, err))
	}

	req := OptimizeRequest{
		Points:     points,
		Algorithm:  ctx.FormValue("algorithm"),
		TravelMode: ctx.FormValue("travel_mode"),
	}
	if v := ctx.FormValue("closed"); v != "" {
		closed, err := strconv.ParseBool(v)
		if err != nil {
			return rc.fail(ctx, fmt.Errorf("%w: closed: %v", errInvalidBody, err))
		}
		req.Closed = &closed
	}
	if v := ctx.FormValue("rename_duplicates"); v != "" {
		rename, err := strconv.ParseBool(v)
		if err != nil {
			return rc.fail(ctx, fmt.Errorf("%w: rename_duplicates: %v", errInvalidBody, err))
		}
		req.RenameDuplicates = rename
	}

	res, summary, err := rc.run(ctx.UserContext(), req)
	if err != nil {
		return rc.fail(ctx, err)
	}
	return ctx.JSON(respond(res, summary))
}

// run validates the request, resolves names and optimizes under the
// configured timeout.
func (rc *RouteController) run(ctx context.Context, req OptimizeRequest) (RouteOptimizer.Result, RouteOptimizer.Summary, error) {
	if err := rc.validator.Struct(req); err != nil {
		return RouteOptimizer.Result{}, RouteOptimizer.Summary{}, err
	}
	if n := len(req.Points) + len(req.Locations); rc.Cfg.MaxPoints > 0 && n > rc.Cfg.MaxPoints {
		return RouteOptimizer.Result{}, RouteOptimizer.Summary{},
			fmt.Errorf("%w: %d points, limit is %d", RouteOptimizer.ErrTooManyPoints, n, rc.Cfg.MaxPoints)
	}

	points := append([]RouteOptimizer.Point(nil), req.Points...)
	if len(req.Locations) > 0 {
		known := make(map[string][2]float64, len(req.Coordinates))
		for name, c := range req.Coordinates {
			known[name] = [2]float64{c[0], c[1]}
		}
		resolved, err := Geocoder.ResolvePoints(ctx, rc.Geocoder, req.Locations, known, rc.Concurrency)
		if err != nil {
			return RouteOptimizer.Result{}, RouteOptimizer.Summary{}, err
		}
		points = append(points, resolved...)
	}

	opts := rc.defaults
	if req.Closed != nil {
		opts.Closed = *req.Closed
	}
	if req.Algorithm != "" {
		opts.Algorithm = RouteOptimizer.Algorithm(req.Algorithm)
	}
	if req.RenameDuplicates {
		opts.Duplicates = RouteOptimizer.DuplicateDisambiguate
	}
	mode := rc.Cfg.DefaultTravelMode
	if req.TravelMode != "" {
		mode = RouteOptimizer.TravelMode(req.TravelMode)
	}

	optCtx := ctx
	if rc.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		optCtx, cancel = context.WithTimeout(ctx, rc.Cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := RouteOptimizer.Optimize(optCtx, points, opts)
	algorithm := string(opts.Algorithm)
	if err == nil {
		algorithm = string(res.Algorithm)
	}
	rc.Metrics.ObserveOptimization(algorithm, RouteOptimizer.ErrorKind(err), len(points), time.Since(start))
	if err != nil {
		return RouteOptimizer.Result{}, RouteOptimizer.Summary{}, err
	}

	rc.Log.Debug("route optimized",
		zap.Int("points", len(points)),
		zap.String("algorithm", string(res.Algorithm)),
		zap.Float64("total_km", res.TotalDistance),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, RouteOptimizer.Summarize(res, mode), nil
}

func respond(res RouteOptimizer.Result, summary RouteOptimizer.Summary) OptimizeResponse {
	coords := res.Points
	if coords == nil {
		coords = []RouteOptimizer.Point{}
	}
	return OptimizeResponse{
		Status:           res.Status,
		Order:            res.Order,
		TotalDistance:    round2(res.TotalDistance),
		InitialDistance:  round2(res.InitialDistance),
		EstimatedTime:    summary.EstimatedMinutes,
		FormattedTime:    summary.FormattedTime,
		SummaryMessage:   summary.Message,
		RouteCoordinates: coords,
		GoogleMapsURL:    summary.GoogleMapsURL,
		TravelMode:       summary.TravelMode,
		Algorithm:        res.Algorithm,
		Closed:           res.Closed,
		Iterations:       res.Iterations,
		Converged:        res.Converged,
		Message:          fmt.Sprintf("Route computed using %s.", describe(res.Algorithm)),
	}
}

func describe(a RouteOptimizer.Algorithm) string {
	switch a {
	case RouteOptimizer.AlgorithmNearest:
		return "nearest neighbour"
	case RouteOptimizer.AlgorithmMultiStart:
		return "multi-start nearest neighbour with 2-opt"
	case RouteOptimizer.AlgorithmMST:
		return "MST preorder with 2-opt"
	case RouteOptimizer.AlgorithmExact:
		return "exhaustive search"
	default:
		return "nearest neighbour with 2-opt"
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
