package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	TaskCompletionTotal        = "task_completion_total"
	RewardSuppressedTotal      = "reward_suppressed_total"
	CurrencyDeltaTotal         = "currency_delta_total"
	ParticipationTotal         = "participation_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		TaskCompletionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TaskCompletionTotal,
			Help: "Count of applied task completions",
		}, []string{"kind", "direction"}),
		RewardSuppressedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardSuppressedTotal,
			Help: "Count of completions whose reward was suppressed by the reward lock",
		}, []string{"kind"}),
		CurrencyDeltaTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CurrencyDeltaTotal,
			Help: "Sum of absolute currency deltas applied to balances",
		}, []string{"currency", "operation"}),
		ParticipationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ParticipationTotal,
			Help: "Count of challenge and group participation changes",
		}, []string{"target", "action"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)
