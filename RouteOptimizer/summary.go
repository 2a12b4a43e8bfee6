package RouteOptimizer

import (
	"fmt"
	"math"
)

// TravelMode selects the nominal speed used for time estimates.
type TravelMode string

const (
	Driving   TravelMode = "driving"
	Walking   TravelMode = "walking"
	Bicycling TravelMode = "bicycling"
	Transit   TravelMode = "transit"
)

// AverageSpeeds in km/h per travel mode.
var AverageSpeeds = map[TravelMode]float64{
	Driving:   60,
	Walking:   5,
	Bicycling: 15,
	Transit:   30,
}

// Summary is the human readable description of a Result.
type Summary struct {
	TravelMode       TravelMode `json:"travel_mode"`
	EstimatedMinutes float64    `json:"estimated_time"`
	FormattedTime    string     `json:"formatted_time"`
	Message          string     `json:"summary_message"`
	GoogleMapsURL    string     `json:"google_maps_url"`
}

// Summarize estimates travel time from the straight-line distance. Unknown
// modes fall back to Driving.
func Summarize(r Result, mode TravelMode) Summary {
	speed, ok := AverageSpeeds[mode]
	if !ok {
		mode = Driving
		speed = AverageSpeeds[Driving]
	}
	minutes := r.TotalDistance / speed * 60
	formatted := FormatDuration(minutes)

	return Summary{
		TravelMode:       mode,
		EstimatedMinutes: math.Round(minutes*100) / 100,
		FormattedTime:    formatted,
		Message: fmt.Sprintf("Optimized route covers %.2f km and will take approximately %s.",
			r.TotalDistance, formatted),
		GoogleMapsURL: GoogleMapsURL(r.Points, r.Closed, mode),
	}
}

// FormatDuration renders minutes as "45 min", "2 hr" or "1 hr 30 min".
func FormatDuration(minutes float64) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", int(math.Round(minutes)))
	}
	hours := int(minutes / 60)
	mins := int(math.Mod(minutes, 60))
	if mins == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, mins)
}
