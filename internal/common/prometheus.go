package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal = "http_requests_total"
	ClaimFlowFailure = "claim_flow_failure"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		ClaimFlowFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ClaimFlowFailure,
			Help: "Count of all failed claim flows",
		}, []string{"reason"}),
	}
)

func RegisterPrometheus() {
	for _, counter := range PromCounters {
		prometheus.MustRegister(counter)
	}
}
