package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/chart"
	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/geo"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/sheet"
	"github.com/klytics/sheetviz/internal/table"
)

// apiError is an error with the status code it should be answered with.
type apiError struct {
	status int
	err    error
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

func badRequest(err error) error { return &apiError{http.StatusBadRequest, err} }
func notFound(err error) error   { return &apiError{http.StatusNotFound, err} }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := output.Encode(&buf, v); err != nil {
		command := ""
		if res, ok := v.(output.JSONResult); ok {
			command = res.Command
		}
		buf.Reset()
		status = http.StatusInternalServerError
		_ = output.Encode(&buf, output.ErrorResult(command, fmt.Errorf("could not encode response: %w", err), output.ExitSystemError))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, cmd string, err error) {
	status := http.StatusInternalServerError
	var ae *apiError
	if errors.As(err, &ae) {
		status = ae.status
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", zap.String("command", cmd), zap.String("path", r.URL.Path), zap.Error(err))
	}
	code := output.ExitUserError
	if status >= http.StatusInternalServerError {
		code = output.ExitSystemError
	}
	writeJSON(w, status, output.ErrorResult(cmd, err, code))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.Result("health", map[string]interface{}{
		"status":    "ok",
		"workbooks": s.store.Len(),
	}))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.Result("workbooks", s.store.List()))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.opts.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, "upload", &apiError{http.StatusRequestEntityTooLarge,
				fmt.Errorf("workbook is larger than %d MB", s.opts.MaxUploadMB)})
			return
		}
		s.writeError(w, r, "upload", badRequest(fmt.Errorf("invalid upload — send the workbook as multipart field \"file\": %w", err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, "upload", badRequest(fmt.Errorf("missing multipart field \"file\": %w", err)))
		return
	}
	defer file.Close()

	if !xlsx.Supported(header.Filename) {
		s.writeError(w, r, "upload", &apiError{http.StatusUnsupportedMediaType,
			fmt.Errorf("%q is not a spreadsheet — expected one of %s", header.Filename, strings.Join(xlsx.Extensions, ", "))})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, "upload", err)
		return
	}
	wb, err := xlsx.ReadBytes(data, header.Filename)
	if err != nil {
		s.writeError(w, r, "upload", badRequest(err))
		return
	}

	e := s.store.Put(header.Filename, wb)
	s.logger.Info("workbook uploaded", zap.String("id", e.ID), zap.String("name", e.Name), zap.Int("sheets", len(e.Sheets)))
	writeJSON(w, http.StatusCreated, output.Result("upload", e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		s.writeError(w, r, "delete", notFound(fmt.Errorf("workbook %q not found", id)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r)
	if err != nil {
		s.writeError(w, r, "sheets", err)
		return
	}
	writeJSON(w, http.StatusOK, output.Result("sheets", e.Sheets))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sh, err := s.sheet(r)
	if err != nil {
		s.writeError(w, r, "table", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, table.HTML(sh))
}

// monthsResult lists the month filter choices for a sheet.
type monthsResult struct {
	Column  string   `json:"column"`
	Options []string `json:"options"`
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	sh, err := s.sheet(r)
	if err != nil {
		s.writeError(w, r, "months", err)
		return
	}
	col := sheet.DetectMonthColumn(sh.Header(), s.opts.MonthKeywords...)
	if ref := r.URL.Query().Get("column"); ref != "" {
		if col, err = sh.ResolveColumn(ref); err != nil {
			s.writeError(w, r, "months", badRequest(err))
			return
		}
	}
	res := monthsResult{Options: aggregate.MonthOptions(sh, col)}
	if col != sheet.NoColumn {
		res.Column = sh.HeaderName(col)
	}
	writeJSON(w, http.StatusOK, output.Result("months", res))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	h, warnings, err := s.render(r)
	if err != nil {
		s.writeError(w, r, "chart", err)
		return
	}
	writeJSON(w, http.StatusOK, output.Result("chart", h.Config(), warnings...))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	h, _, err := s.render(r)
	if err != nil {
		s.writeError(w, r, "chart.png", err)
		return
	}
	size, err := imageSize(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "chart.png", badRequest(err))
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(h, &buf, size); err != nil {
		s.writeError(w, r, "chart.png", &apiError{http.StatusUnprocessableEntity, err})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	sh, err := s.sheet(r)
	if err != nil {
		s.writeError(w, r, "map", err)
		return
	}
	q := r.URL.Query()
	cols := geo.DetectColumns(sh.Header())
	for _, f := range []struct {
		param string
		dst   *string
	}{{"lat", &cols.Lat}, {"lon", &cols.Lon}, {"name", &cols.Name}} {
		ref := q.Get(f.param)
		if ref == "" {
			continue
		}
		i, err := sh.ResolveColumn(ref)
		if err != nil {
			s.writeError(w, r, "map", badRequest(fmt.Errorf("%s: %w", f.param, err)))
			return
		}
		*f.dst = sh.HeaderName(i)
	}
	style := geo.DefaultStyle
	if c := q.Get("color"); c != "" {
		if !geo.ValidColor(c) {
			s.writeError(w, r, "map", badRequest(fmt.Errorf("unknown marker color %q — available: %s", c, strings.Join(geo.MarkerColors, ", "))))
			return
		}
		style.Color = c
	}
	if i := q.Get("icon"); i != "" {
		style.Icon = i
	}

	data, err := geo.Plot(sh, cols, style).GeoJSON()
	if err != nil {
		s.writeError(w, r, "map", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// render draws the chart described by the request's query string into a
// fresh handle.
func (s *Server) render(r *http.Request) (*chart.Handle, []string, error) {
	sh, err := s.sheet(r)
	if err != nil {
		return nil, nil, err
	}
	req, err := chartOptions(r.URL.Query(), s.opts.MonthKeywords).Request(sh)
	if err != nil {
		return nil, nil, badRequest(err)
	}
	h := &chart.Handle{}
	_, warnings := chart.Render(h, req)
	return h, warnings, nil
}

func chartOptions(q url.Values, keywords []string) chart.Options {
	return chart.Options{
		Label:       q.Get("label"),
		Values:      splitList(q.Get("values")),
		MonthColumn: q.Get("month_column"),
		Month:       q.Get("month"),
		Sort:        q.Get("sort"),
		Type:        q.Get("type"),
		Palette:     q.Get("palette"),
		Titles: chart.Titles{
			Title: q.Get("title"),
			XAxis: q.Get("x_title"),
			YAxis: q.Get("y_title"),
		},
		MonthKeywords: keywords,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func imageSize(q url.Values) (chart.ImageSize, error) {
	size := chart.DefaultImageSize
	for _, f := range []struct {
		param string
		dst   *int
	}{{"width", &size.Width}, {"height", &size.Height}} {
		v := q.Get(f.param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 100 || n > 4096 {
			return size, fmt.Errorf("%s must be between 100 and 4096 pixels, got %q", f.param, v)
		}
		*f.dst = n
	}
	return size, nil
}

func (s *Server) entry(r *http.Request) (*Entry, error) {
	id := chi.URLParam(r, "id")
	e, ok := s.store.Get(id)
	if !ok {
		return nil, notFound(fmt.Errorf("workbook %q not found — upload it first", id))
	}
	return e, nil
}

func (s *Server) sheet(r *http.Request) (*sheet.Sheet, error) {
	e, err := s.entry(r)
	if err != nil {
		return nil, err
	}
	name, err := url.PathUnescape(chi.URLParam(r, "sheet"))
	if err != nil {
		return nil, badRequest(fmt.Errorf("invalid sheet name: %w", err))
	}
	sh, err := e.Workbook.GetSheet(name)
	if err != nil {
		return nil, notFound(err)
	}
	return sh, nil
}
