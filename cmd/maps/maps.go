// Package maps provides the "sheetviz map" command.
package maps

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/geo"
	"github.com/klytics/sheetviz/internal/output"
)

type searchResult struct {
	Marker geo.Marker `json:"marker"`
	View   geo.View   `json:"view"`
}

// NewCommand returns the map command.
func NewCommand() *cobra.Command {
	var (
		sheetName string
		latCol    string
		lonCol    string
		nameCol   string
		markColor string
		icon      string
		search    string
		geoJSON   bool
		htmlPath  string
	)

	cmd := &cobra.Command{
		Use:   "map <file>",
		Short: "Plot the rows of a sheet as map markers",
		Long: `Reads latitude, longitude and name columns and turns each row into a map
marker. Columns are detected from the header ("lat", "lon", "nom"/"name")
unless given. Rows without both coordinates are skipped.

Example:
  sheetviz map sites.xlsx --geojson > sites.geojson
  sheetviz map sites.xlsx --color red --html sites.html
  sheetviz map sites.xlsx --search "bogota" --html bogota.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			s, err := xlsx.OpenSheet(args[0], sheetName)
			if err != nil {
				return err
			}

			cols := geo.DetectColumns(s.Header())
			for _, c := range []struct {
				ref string
				dst *string
			}{{latCol, &cols.Lat}, {lonCol, &cols.Lon}, {nameCol, &cols.Name}} {
				if c.ref == "" {
					continue
				}
				i, err := s.ResolveColumn(c.ref)
				if err != nil {
					return err
				}
				*c.dst = s.HeaderName(i)
			}
			if !geo.ValidColor(markColor) {
				return fmt.Errorf("unknown marker color %q — available: %s", markColor, strings.Join(geo.MarkerColors, ", "))
			}

			m := geo.Plot(s, cols, geo.Style{Color: markColor, Icon: icon})
			m.View = geo.View{
				Center: geo.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLon},
				Zoom:   cfg.Map.Zoom,
			}

			var found *searchResult
			if search != "" {
				mk, view, ok := m.Search(search)
				if !ok {
					return fmt.Errorf("no point named %q — search matches the whole name, ignoring case", search)
				}
				found = &searchResult{Marker: mk, View: view}
			}

			if htmlPath != "" {
				f, err := os.Create(htmlPath)
				if err != nil {
					return fmt.Errorf("could not create %s: %w", htmlPath, err)
				}
				if err := m.WriteHTML(f, s.Name, search); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			switch {
			case geoJSON:
				data, err := m.GeoJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case jsonFlag:
				if found != nil {
					return output.WriteJSON(out, "map", found)
				}
				return output.WriteJSON(out, "map", m)
			}

			dim := color.New(color.FgHiBlack)
			color.New(color.Bold, color.FgCyan).Fprintf(out, "%d markers", m.Len())
			dim.Fprintf(out, "  (lat=%s, lon=%s, name=%s)\n", cols.Lat, cols.Lon, cols.Name)
			if m.Skipped > 0 {
				dim.Fprintf(out, "%d rows without coordinates skipped\n", m.Skipped)
			}
			if sw, ne, ok := m.Bounds(); ok {
				fmt.Fprintf(out, "Bounds: (%g, %g) to (%g, %g)\n", sw.Lat, sw.Lng, ne.Lat, ne.Lng)
			}
			if found != nil {
				fmt.Fprintf(out, "Found %s\n", strings.ReplaceAll(found.Marker.Popup(), "\n", " — "))
			}
			if htmlPath != "" {
				color.New(color.FgGreen).Fprintf(out, "Wrote %s\n", htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&latCol, "lat", "", "Latitude column name or index (default: detected)")
	cmd.Flags().StringVar(&lonCol, "lon", "", "Longitude column name or index (default: detected)")
	cmd.Flags().StringVar(&nameCol, "name", "", "Name column name or index (default: detected)")
	cmd.Flags().StringVar(&markColor, "color", geo.DefaultStyle.Color, "Marker color")
	cmd.Flags().StringVar(&icon, "icon", geo.DefaultStyle.Icon, "Font Awesome icon name for markers")
	cmd.Flags().StringVar(&search, "search", "", "Find a point by name and center the map on it")
	cmd.Flags().BoolVar(&geoJSON, "geojson", false, "Print the markers as GeoJSON")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write a standalone Leaflet map page")

	return cmd
}
