package RouteOptimizer

import (
	"fmt"
	"net/url"
	"strings"
)

const googleMapsDirectionsURL = "https://www.google.com/maps/dir/?api=1"

// GoogleMapsURL builds a directions link that visits points in order. Closed
// routes end where they started.
func GoogleMapsURL(points []Point, closed bool, mode TravelMode) string {
	if len(points) == 0 {
		return ""
	}
	if mode == "" {
		mode = Driving
	}

	stops := points
	if closed && len(points) > 1 {
		stops = append(append([]Point(nil), points...), points[0])
	}

	params := url.Values{}
	params.Add("origin", latLng(stops[0]))
	params.Add("destination", latLng(stops[len(stops)-1]))
	if len(stops) > 2 {
		waypoints := make([]string, 0, len(stops)-2)
		for _, p := range stops[1 : len(stops)-1] {
			waypoints = append(waypoints, latLng(p))
		}
		params.Add("waypoints", strings.Join(waypoints, "|"))
	}
	params.Add("travelmode", string(mode))

	return googleMapsDirectionsURL + "&" + params.Encode()
}

func latLng(p Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}
