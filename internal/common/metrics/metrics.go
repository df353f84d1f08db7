// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CodecEncodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codec_encode_total",
			Help: "Total number of event configurations encoded",
		},
		[]string{"catalog"},
	)

	CodecDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codec_decode_total",
			Help: "Total number of event configurations decoded",
		},
		[]string{"catalog"},
	)

	CodecKeysSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codec_keys_skipped_total",
			Help: "Template bundle keys skipped during decode",
		},
		[]string{"reason"},
	)

	CodecDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "codec_duration_seconds",
			Help: "Duration of encode/decode passes in seconds",
		},
		[]string{"direction"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
