// Package metrics defines the Prometheus instrumentation for the vault.
// Collectors exist as package-level vectors so instrumented packages can
// record without plumbing a registry; Register wires them into a registry
// at startup.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label constants for metrics.
const (
	LabelSurface = "surface"
	LabelOutcome = "outcome"
	LabelResult  = "result"
	LabelMethod  = "method"
)

// Result constants for share downloads.
const (
	ResultServed    = "served"
	ResultExhausted = "exhausted"
	ResultExpired   = "expired"
)

var (
	// GateOutcomes counts terminal gate classifications per surface.
	GateOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safesplit",
			Subsystem: "gate",
			Name:      "outcomes_total",
			Help:      "Total gate submissions by surface and outcome",
		},
		[]string{LabelSurface, LabelOutcome},
	)

	// ShareDownloads counts download attempts against share links.
	ShareDownloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safesplit",
			Subsystem: "shares",
			Name:      "downloads_total",
			Help:      "Total share download attempts by result",
		},
		[]string{LabelResult},
	)

	// ChallengesIssued counts second-factor challenges by delivery method.
	ChallengesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safesplit",
			Subsystem: "gate",
			Name:      "challenges_issued_total",
			Help:      "Total second-factor challenges issued by method",
		},
		[]string{LabelMethod},
	)

	// FilesSealed counts successful file uploads.
	FilesSealed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "safesplit",
			Subsystem: "files",
			Name:      "sealed_total",
			Help:      "Total files sealed and stored",
		},
	)

	// SealedBytes counts plaintext bytes sealed.
	SealedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "safesplit",
			Subsystem: "files",
			Name:      "sealed_bytes_total",
			Help:      "Total plaintext bytes sealed",
		},
	)
)

// Register registers every collector with the given registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func Register(registerer prometheus.Registerer) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	registerer.MustRegister(
		GateOutcomes,
		ShareDownloads,
		ChallengesIssued,
		FilesSealed,
		SealedBytes,
	)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
