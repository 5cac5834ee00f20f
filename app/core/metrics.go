package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sidekick-ai/sidekick-ai/pkg/metrics"
)

type Metrics struct {
	apiResponseTime *prometheus.HistogramVec
	apiErrorCounter *prometheus.CounterVec
	llmRequestTime  *prometheus.HistogramVec
	llmError        *prometheus.CounterVec
	agentFallback   *prometheus.CounterVec
	streamResume    *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime: metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter: metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		llmRequestTime:  metrics.NewHistogramVec("llm_request_time", []string{"provider"}),
		llmError:        metrics.NewCounterVec("llm_error", []string{"provider"}),
		agentFallback:   metrics.NewCounterVec("agent_fallback", []string{"reason"}),
		streamResume:    metrics.NewCounterVec("stream_resume", []string{"result"}),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) LLMRequestTimer(provider string) *prometheus.Timer {
	return prometheus.NewTimer(m.llmRequestTime.WithLabelValues(provider))
}

func (m *Metrics) LLMErrorInc(provider string) {
	m.llmError.WithLabelValues(provider).Inc()
}

func (m *Metrics) AgentFallbackInc(reason string) {
	m.agentFallback.WithLabelValues(reason).Inc()
}

func (m *Metrics) StreamResumeInc(result string) {
	m.streamResume.WithLabelValues(result).Inc()
}
