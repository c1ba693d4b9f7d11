// Package metrics registers the Prometheus collectors shared by both services.
// Collectors are registered on the default registry the first time any
// recording function runs, so /metrics exposes them without extra wiring.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "meetingtime_"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	slotSearchTotal   *prometheus.CounterVec
	slotSearchLatency *prometheus.HistogramVec
	slotCandidates    prometheus.Histogram

	calendarRequests *prometheus.CounterVec

	proposalEvents *prometheus.CounterVec
)

func register() {
	registerOnce.Do(func() {
		slotSearchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slot_searches_total",
				Help: "Slot searches by outcome (found, exhausted, error)",
			},
			[]string{"outcome"},
		)
		slotSearchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "slot_search_seconds",
				Help:    "Slot search latency in seconds",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"outcome"},
		)
		slotCandidates = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "slot_candidates_checked",
				Help:    "Candidate hours evaluated per slot search",
				Buckets: []float64{1, 4, 8, 12, 16, 20, 24, 48, 96, 168},
			},
		)
		calendarRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calendar_requests_total",
				Help: "Calendar reporting requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		proposalEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slot_proposals_total",
				Help: "Slot proposal events handled from Kafka by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			slotSearchTotal,
			slotSearchLatency,
			slotCandidates,
			calendarRequests,
			proposalEvents,
		)
	})
}

// ObserveSlotSearch records one finder run.
func ObserveSlotSearch(outcome string, checked int, elapsed time.Duration) {
	register()
	slotSearchTotal.WithLabelValues(outcome).Inc()
	slotSearchLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if checked > 0 {
		slotCandidates.Observe(float64(checked))
	}
}

func ObserveCalendarRequest(endpoint, result string) {
	register()
	calendarRequests.WithLabelValues(endpoint, result).Inc()
}

func ObserveProposal(result string) {
	register()
	proposalEvents.WithLabelValues(result).Inc()
}
