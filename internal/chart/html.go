package chart

import (
	"fmt"
	"html/template"
	"io"
)

type page struct {
	Title    string
	Config   *Config
	Circular bool
}

var pageTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{margin:0;background:#fff;font-family:sans-serif}#wrap{position:relative;height:90vh;padding:2rem}</style>
</head>
<body>
<div id="wrap"><canvas id="chart"></canvas></div>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chartjs-plugin-datalabels@2.2.0/dist/chartjs-plugin-datalabels.min.js"></script>
<script>
const config = {{.Config}};
const circular = {{.Circular}};
config.plugins = [ChartDataLabels];
config.options.plugins.datalabels.formatter = (value, ctx) => {
  if (circular) {
    const total = ctx.dataset.data.reduce((a, b) => a + b, 0);
    const pct = total ? Math.round(value / total * 1000) / 10 : 0;
    return pct < 3 ? "" : value.toLocaleString() + "\n(" + pct.toFixed(1) + "%)";
  }
  return value ? value.toLocaleString() : "";
};
new Chart(document.getElementById("chart"), config);
</script>
</body>
</html>
`))

// WriteHTML writes a standalone Chart.js page drawing the chart held by h.
func WriteHTML(h *Handle, w io.Writer) error {
	if !h.Rendered() {
		return fmt.Errorf("no chart to export — render a chart first")
	}
	title := h.Titles().Title
	if title == "" {
		title = "Chart"
	}
	data := page{Title: title, Config: h.Config(), Circular: h.Type().Circular()}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("could not write chart page: %w", err)
	}
	return nil
}
