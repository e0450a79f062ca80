package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_geo_lookups_total", Help: "Geolocation lookups by provider and result.",
	}, []string{"provider", "result"})

	VisitsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_visits_recorded_total", Help: "Visit upserts by outcome (inserted, incremented, error).",
	}, []string{"result"})

	TrackingSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_tracking_skipped_total", Help: "Page loads whose write path was skipped or abandoned.",
	}, []string{"reason"})

	ReportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resume_report_errors_total", Help: "Visitor store scans that failed and degraded to an empty report.",
	})

	PageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_page_renders_total", Help: "Page dispatches by outcome (ok, not_found, error, panic).",
	}, []string{"outcome"})
)
