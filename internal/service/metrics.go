package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	cacheRows      = "rows"
	cacheExecutors = "executors"
	cacheApprovers = "approvers"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Total number of work item cache lookups broken down by cache and hit/miss.",
	}, []string{"cache", "result"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "cache",
		Name:      "invalidate_total",
		Help:      "Total number of division cache invalidations broken down by reason.",
	}, []string{"reason"})

	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktracker",
		Subsystem: "requests",
		Name:      "transitions_total",
		Help:      "Total number of request status changes broken down by target status.",
	}, []string{"status"})
)

func recordCacheRequest(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(cache, result).Inc()
}

func recordCacheInvalidate(reason string) {
	if reason == "" {
		reason = "manual"
	}
	cacheInvalidations.WithLabelValues(reason).Inc()
}

func recordTransition(status string) {
	requestTransitions.WithLabelValues(status).Inc()
}
