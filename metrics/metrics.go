// Package metrics exposes Prometheus metrics for the voice pipeline
// server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all counters and gauges of the server. Create one per
// process.
type Metrics struct {
	SessionsStarted prometheus.Counter
	SessionsEnded   prometheus.Counter
	ActiveSessions  prometheus.Gauge

	AudioFramesIn  prometheus.Counter
	AudioFramesOut prometheus.Counter
	AudioBytesIn   prometheus.Counter
	AudioBytesOut  prometheus.Counter

	ControlIgnored  prometheus.Counter
	RecordingsSaved prometheus.Counter
}

// New creates and registers the metrics with reg. Pass
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_sessions_started_total",
			Help: "Total number of WebSocket sessions accepted",
		}),
		SessionsEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_sessions_ended_total",
			Help: "Total number of sessions that finished",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voice_active_sessions",
			Help: "Current number of active sessions",
		}),
		AudioFramesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_audio_frames_in_total",
			Help: "Total number of audio frames received from clients",
		}),
		AudioFramesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_audio_frames_out_total",
			Help: "Total number of audio frames sent to clients",
		}),
		AudioBytesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_audio_bytes_in_total",
			Help: "Total PCM bytes received from clients",
		}),
		AudioBytesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_audio_bytes_out_total",
			Help: "Total PCM bytes sent to clients",
		}),
		ControlIgnored: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_control_messages_ignored_total",
			Help: "Total number of unparseable control messages dropped",
		}),
		RecordingsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_recordings_saved_total",
			Help: "Total number of session WAV recordings written",
		}),
	}
}
