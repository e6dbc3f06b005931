// ABOUTME: Prometheus instrumentation for the gateway surface.
// ABOUTME: Exposed on the config-gated metrics endpoint.

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_gateway_messages_submitted_total",
		Help: "User messages accepted by POST /send.",
	})

	streamFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_gateway_stream_frames_total",
		Help: "Content frames emitted across all streaming sessions.",
	})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_gateway_active_streams",
		Help: "Streaming sessions currently open.",
	})
)
