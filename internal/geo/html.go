package geo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

type pageMarker struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Popup string  `json:"popup"`
	Color string  `json:"color"`
	Icon  string  `json:"icon"`
}

type pageData struct {
	Title   string
	View    View
	Layers  []Layer
	Markers []pageMarker
	Focus   *pageMarker
}

var pageTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css">
<style>html,body,#map{height:100%;margin:0}</style>
</head>
<body>
<div id="map"></div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.min.js"></script>
<script>
const view = {{.View}};
const layers = {{.Layers}};
const markers = {{.Markers}};
const focus = {{.Focus}};

const map = L.map("map").setView([view.center.lat, view.center.lng], view.zoom);
const bases = {};
layers.forEach((l, i) => {
  const opts = {attribution: l.attribution};
  if (l.maxZoom) { opts.maxZoom = l.maxZoom; }
  bases[l.name] = L.tileLayer(l.url, opts);
  if (i === 0) { bases[l.name].addTo(map); }
});
L.control.layers(bases).addTo(map);

const group = L.featureGroup().addTo(map);
markers.forEach(m => {
  const icon = L.AwesomeMarkers.icon({icon: m.icon, prefix: "fa", markerColor: m.color, iconColor: "white"});
  L.marker([m.lat, m.lng], {icon: icon}).bindPopup(m.popup.replace(/\n/g, "<br>")).addTo(group);
});
if (focus) {
  map.setView([focus.lat, focus.lng], {{.View.Zoom}});
} else if (markers.length > 0) {
  map.fitBounds(group.getBounds(), {padding: [20, 20]});
}
</script>
</body>
</html>
`))

func toPage(mk Marker) pageMarker {
	return pageMarker{
		Name:  mk.Name,
		Lat:   mk.Position.Lat,
		Lng:   mk.Position.Lng,
		Popup: mk.Popup(),
		Color: mk.Style.Color,
		Icon:  mk.Style.Icon,
	}
}

// WriteHTML writes a standalone Leaflet page showing the markers. When
// focus names a marker the page opens centered on it at SearchZoom.
func (m *Map) WriteHTML(w io.Writer, title, focus string) error {
	data := pageData{
		Title:   title,
		View:    m.view(),
		Layers:  BaseLayers,
		Markers: make([]pageMarker, 0, len(m.Markers)),
	}
	for _, mk := range m.Markers {
		data.Markers = append(data.Markers, toPage(mk))
	}
	if focus != "" {
		mk, view, ok := m.Search(focus)
		if !ok {
			return fmt.Errorf("no point named %q — search matches the whole name, ignoring case", focus)
		}
		p := toPage(mk)
		data.Focus = &p
		data.View = view
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("could not write map page: %w", err)
	}
	return nil
}

// MarshalJSON lets the map travel over the HTTP API.
func (m *Map) MarshalJSON() ([]byte, error) {
	markers := m.Markers
	if markers == nil {
		markers = []Marker{}
	}
	return json.Marshal(struct {
		View    View     `json:"view"`
		Layers  []Layer  `json:"layers"`
		Markers []Marker `json:"markers"`
		Skipped int      `json:"skipped"`
	}{m.view(), BaseLayers, markers, m.Skipped})
}

func (m *Map) view() View {
	if m.View.Zoom == 0 {
		return DefaultView
	}
	return m.View
}
