package http

import (
	"net/http"
	"strings"

	"thrips/internal/chart"
	"thrips/internal/core"
	applog "thrips/internal/log"
)

// chartResponse is the chart-ready payload of GET /thrips/chart.
type chartResponse struct {
	Period      string        `json:"period"`
	Title       string        `json:"title"`
	TeaLabel    string        `json:"teaLabel"`
	OtherLabel  string        `json:"otherLabel"`
	Labels      []string      `json:"labels"`
	TeaValues   []int64       `json:"teaValues"`
	OtherValues []int64       `json:"otherValues"`
	Totals      chart.Totals  `json:"totals"`
	AxisMax     int64         `json:"axisMax"`
	AxisStep    int64         `json:"axisStep"`
	Months      []string      `json:"months"`
	Month       string        `json:"month"`
	Pie         *chart.Totals `json:"pie"`
}

// handleChart serves GET /thrips/chart?period=&month=YYYY-MM. The pie
// covers one month when period is month and the series totals otherwise.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriodParam(r)
	buckets, err := s.svc.Aggregate(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err, applog.OpChart)
		return
	}

	series := chart.Build(period, buckets)
	totals := series.Totals()
	resp := chartResponse{
		Period:      period.String(),
		Title:       chart.Title(period),
		TeaLabel:    chart.TeaLabel,
		OtherLabel:  chart.OtherLabel,
		Labels:      series.Labels,
		TeaValues:   series.TeaValues,
		OtherValues: series.OtherValues,
		Totals:      totals,
		AxisMax:     chart.AxisMax(series),
		AxisStep:    chart.AxisStep,
		Months:      []string{},
	}

	if period == core.Month {
		resp.Months = series.Labels
		month := strings.TrimSpace(r.URL.Query().Get("month"))
		if month == "" {
			month = chart.DefaultMonth(buckets)
		}
		resp.Month = month
		if pie, ok := chart.MonthSlice(buckets, month); ok {
			resp.Pie = &pie
		}
	} else {
		resp.Pie = &totals
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogAggregation(r.Context(), applog.OpChart, period.String(), len(buckets))
	NewResponse().JSON(resp).Write(w)
}

// handleExport serves GET /thrips/export?period= as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriodParam(r)
	buckets, err := s.svc.Aggregate(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}

	dl, err := chart.Export(period, buckets)
	if err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogAggregation(r.Context(), applog.OpExport, period.String(), len(buckets))
	NewResponse().Attachment(dl.Filename, dl.ContentType, dl.Body).Write(w)
}

// handleIndex renders the chart page. Data is fetched client-side.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Periods    []core.Period
		TeaLabel   string
		OtherLabel string
	}{
		Periods:    []core.Period{core.Day, core.Week, core.Month},
		TeaLabel:   chart.TeaLabel,
		OtherLabel: chart.OtherLabel,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
