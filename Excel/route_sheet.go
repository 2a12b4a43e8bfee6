package Excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"SmartRoute/RouteOptimizer"
)

const (
	RouteSheet   = "Route"
	SummarySheet = "Summary"
)

// ErrNoPoints is returned when an uploaded workbook holds no usable rows.
var ErrNoPoints = errors.New("workbook contains no locations")

// WriteRoute renders an optimized route as an xlsx workbook with one row per
// stop and a summary sheet.
func WriteRoute(res RouteOptimizer.Result, summary RouteOptimizer.Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(RouteSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []interface{}{"Stop", "Name", "Latitude", "Longitude", "Leg (km)", "Cumulative (km)"}
	if err := f.SetSheetRow(RouteSheet, "A1", &headers); err != nil {
		return nil, err
	}

	stops := res.Points
	if res.Closed && len(stops) > 1 {
		stops = append(append([]RouteOptimizer.Point(nil), stops...), stops[0])
	}
	var cumulative float64
	for i, p := range stops {
		var leg float64
		if i > 0 {
			leg, err = RouteOptimizer.Haversine(stops[i-1], p)
			if err != nil {
				return nil, err
			}
		}
		cumulative += leg
		row := []interface{}{i + 1, p.Name, p.Lat, p.Lon, round2(leg), round2(cumulative)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(RouteSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(RouteSheet, 1, 1, headerStyle)
	}
	_ = f.SetColWidth(RouteSheet, "A", "A", 8)
	_ = f.SetColWidth(RouteSheet, "B", "B", 30)
	_ = f.SetColWidth(RouteSheet, "C", "F", 15)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Total distance (km)", round2(res.TotalDistance)},
		{"Estimated time", summary.FormattedTime},
		{"Travel mode", string(summary.TravelMode)},
		{"Algorithm", string(res.Algorithm)},
		{"Closed route", res.Closed},
		{"Google Maps", summary.GoogleMapsURL},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 22)

	if f.GetSheetName(0) != RouteSheet {
		_ = f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %w", err)
	}
	return &buf, nil
}

// ReadPoints loads locations from the first sheet of an xlsx workbook. The
// header row names the columns (Name, Latitude/Lat, Longitude/Lon/Lng); without
// a recognisable header columns A, B and C are used. Blank rows are skipped.
func ReadPoints(r io.Reader) ([]RouteOptimizer.Point, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoPoints
	}

	nameCol, latCol, lonCol, hasHeader := columns(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}

	var points []RouteOptimizer.Point
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name, latStr, lonStr := cellAt(row, nameCol), cellAt(row, latCol), cellAt(row, lonCol)
		if name == "" && latStr == "" && lonStr == "" {
			continue
		}
		lat, err := parseCoord(latStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: latitude %q: %w", i+1, latStr, err)
		}
		lon, err := parseCoord(lonStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: longitude %q: %w", i+1, lonStr, err)
		}
		if name == "" {
			name = fmt.Sprintf("Row %d", i+1)
		}
		points = append(points, RouteOptimizer.Point{Name: name, Lat: lat, Lon: lon})
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	return points, nil
}

func columns(header []string) (name, lat, lon int, ok bool) {
	name, lat, lon = -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "location", "stop":
			name = i
		case "lat", "latitude":
			lat = i
		case "lon", "lng", "long", "longitude":
			lon = i
		}
	}
	if lat < 0 || lon < 0 {
		return 0, 1, 2, false
	}
	return name, lat, lon, true
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCoord accepts both "18.52" and "18,52".
func parseCoord(val string) (float64, error) {
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, errors.New("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
