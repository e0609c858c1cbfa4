// Package metrics holds the Prometheus collectors shared by the tracker,
// the render pipeline and the display surfaces. Collectors register with the
// default registry on import; expose them with promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nowplaying"

// Result label values.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultDenied    = "denied"
	ResultNoop      = "noop"
	ResultDisabled  = "disabled"
	ResultApplied   = "applied"
	ResultDiscarded = "discarded"
	ResultUnchanged = "unchanged"
	ResultSubmitted = "submitted"
)

// Tracker metrics
var (
	// RefreshesTotal counts registry refreshes by result (ok/denied/error).
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Session registry refreshes by result",
		},
		[]string{"result"},
	)

	// TrackedSessions is the size of the tracked set after the last refresh.
	TrackedSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_sessions",
			Help:      "Number of sessions currently tracked",
		},
	)

	// SubscriptionsTotal counts per-session subscribe attempts by result.
	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_total",
			Help:      "Per-session callback subscriptions by result",
		},
		[]string{"result"},
	)

	// ActiveSwitchesTotal counts changes of the selected session.
	ActiveSwitchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_switches_total",
			Help:      "Number of times the active session changed",
		},
	)
)

// Render pipeline metrics
var (
	// PaletteJobsTotal counts palette jobs by outcome
	// (submitted/applied/discarded/unchanged).
	PaletteJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "palette_jobs_total",
			Help:      "Palette jobs by outcome",
		},
		[]string{"result"},
	)

	// PaletteDuration tracks how long a single extraction takes.
	PaletteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "palette_duration_seconds",
			Help:      "Palette extraction duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// RenderCacheTotal counts art lookups by outcome (hit/miss/none).
	RenderCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_total",
			Help:      "Render cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// PushesTotal counts snapshots pushed to the display surface.
	PushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pushes_total",
			Help:      "Snapshots pushed to the display surface",
		},
	)

	// ViewersCurrent is the number of connected viewers of the surface.
	ViewersCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "viewers_current",
			Help:      "Currently connected display viewers",
		},
	)
)

// Command metrics
var (
	// CommandsTotal counts dispatched commands by action and result.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched by action and result",
		},
		[]string{"action", "result"},
	)
)
