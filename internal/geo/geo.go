// Package geo plots sheet rows that carry coordinates as map markers and
// indexes them by name for search.
package geo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klytics/sheetviz/internal/sheet"
)

// SearchZoom is the zoom level used when centering on a search hit.
const SearchZoom = 15

// UnnamedPoint labels markers whose name cell is blank.
const UnnamedPoint = "Unnamed point"

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// View is a map viewport.
type View struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// DefaultView centers the map on Colombia.
var DefaultView = View{Center: LatLng{Lat: 4.57, Lng: -74.29}, Zoom: 5}

// Columns names the header columns that hold marker data.
type Columns struct {
	Lat  string `json:"lat"`
	Lon  string `json:"lon"`
	Name string `json:"name"`
}

// DetectColumns guesses the coordinate and name columns from the header:
// the first header containing "lat", "lon" and "nom"/"name" respectively,
// falling back to the first and second columns.
func DetectColumns(header []string) Columns {
	pick := func(fallback int, keywords ...string) string {
		if i := sheet.DetectColumn(header, keywords...); i != sheet.NoColumn {
			return header[i]
		}
		if fallback < len(header) {
			return header[fallback]
		}
		return ""
	}
	return Columns{
		Lat:  pick(0, "lat"),
		Lon:  pick(1, "lon"),
		Name: pick(0, "nom", "name"),
	}
}

// Style is the marker icon look.
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// DefaultStyle is a blue map-pin marker.
var DefaultStyle = Style{Color: "blue", Icon: "map-marker"}

// MarkerColors are the colors the marker icon set supports.
var MarkerColors = []string{
	"red", "darkred", "orange", "green", "darkgreen", "blue", "purple",
	"darkpurple", "cadetblue",
}

// ValidColor reports whether c is one of MarkerColors.
func ValidColor(c string) bool {
	for _, known := range MarkerColors {
		if c == known {
			return true
		}
	}
	return false
}

// Marker is one plotted point.
type Marker struct {
	Name     string `json:"name"`
	Position LatLng `json:"position"`
	Style    Style  `json:"style"`
}

// Popup is the marker's popup text.
func (m Marker) Popup() string {
	return fmt.Sprintf("%s\nLat: %s, Lon: %s", m.Name,
		sheet.FormatNumber(m.Position.Lat), sheet.FormatNumber(m.Position.Lng))
}

// Layer is a base tile layer offered in the layer switcher.
type Layer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom,omitempty"`
}

// BaseLayers are the selectable base maps. The first is the default.
var BaseLayers = []Layer{
	{
		Name:        "Standard",
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	},
	{
		Name:        "Streets",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Street_Map/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
	},
	{
		Name:        "Satellite",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
	},
	{
		Name:        "Topographic",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: `Map data: &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors | Map style: &copy; <a href="https://opentopomap.org">OpenTopoMap</a>`,
		MaxZoom:     17,
	},
	{
		Name:        "Dark",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	},
}

// Map holds plotted markers and a lowercase name index for search.
type Map struct {
	Markers []Marker
	// View is where the map opens when no marker is focused.
	View View
	// Skipped counts data rows left out for lack of usable coordinates.
	Skipped int
	index   map[string]int
}

// Plot builds markers from every row that has both coordinate cells. Rows
// whose coordinates do not parse are skipped. When two markers share a name
// the later one wins the search index.
func Plot(s *sheet.Sheet, cols Columns, style Style) *Map {
	m := &Map{View: DefaultView, index: make(map[string]int)}
	for _, rec := range s.Records() {
		latCell, okLat := rec[cols.Lat]
		lonCell, okLon := rec[cols.Lon]
		if !okLat || !okLon {
			m.Skipped++
			continue
		}
		lat, ok1 := latCell.Float()
		lon, ok2 := lonCell.Float()
		if !ok1 || !ok2 {
			m.Skipped++
			continue
		}

		name := rec[cols.Name].String()
		if name == "" {
			name = UnnamedPoint
		}
		m.index[strings.ToLower(name)] = len(m.Markers)
		m.Markers = append(m.Markers, Marker{
			Name:     name,
			Position: LatLng{Lat: lat, Lng: lon},
			Style:    style,
		})
	}
	return m
}

// Len returns the number of markers.
func (m *Map) Len() int { return len(m.Markers) }

// Search looks a marker up by exact name, ignoring case and surrounding
// space, and returns the view that centers on it.
func (m *Map) Search(term string) (Marker, View, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Marker{}, View{}, false
	}
	i, ok := m.index[term]
	if !ok {
		return Marker{}, View{}, false
	}
	mk := m.Markers[i]
	return mk, View{Center: mk.Position, Zoom: SearchZoom}, true
}

// Bounds returns the south-west and north-east corners covering all markers.
func (m *Map) Bounds() (LatLng, LatLng, bool) {
	if len(m.Markers) == 0 {
		return LatLng{}, LatLng{}, false
	}
	sw, ne := m.Markers[0].Position, m.Markers[0].Position
	for _, mk := range m.Markers[1:] {
		p := mk.Position
		if p.Lat < sw.Lat {
			sw.Lat = p.Lat
		}
		if p.Lng < sw.Lng {
			sw.Lng = p.Lng
		}
		if p.Lat > ne.Lat {
			ne.Lat = p.Lat
		}
		if p.Lng > ne.Lng {
			ne.Lng = p.Lng
		}
	}
	return sw, ne, true
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// GeoJSON encodes the markers as a FeatureCollection of points.
func (m *Map) GeoJSON() ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(m.Markers))}
	for _, mk := range m.Markers {
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: geometry{
				Type:        "Point",
				Coordinates: []float64{mk.Position.Lng, mk.Position.Lat},
			},
			Properties: map[string]any{
				"name":  mk.Name,
				"color": mk.Style.Color,
				"icon":  mk.Style.Icon,
			},
		})
	}
	return json.MarshalIndent(fc, "", "  ")
}
