// Package authmetrics wires the Peer Authorization Manager's callback
// hook up to Prometheus, the way pkg/consensus/prometheus.go and
// cli/server/metrics.go register node-level gauges in the example
// corpus.
package authmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/circuitmesh/peerauth/pkg/auth"
)

var (
	authorizedPeers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "peerauth",
		Name:      "authorized_peers",
		Help:      "Number of peers currently Authorized or Internal.",
	})

	transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerauth",
		Name:      "transitions_total",
		Help:      "Count of authorization status transitions by resulting status.",
	}, []string{"status"})

	callbackErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerauth",
		Name:      "callback_errors_total",
		Help:      "Count of authorization callback invocations that returned an error.",
	})
)

func init() {
	prometheus.MustRegister(authorizedPeers, transitions, callbackErrors)
}

// Register attaches a Prometheus-reporting callback to m. It is itself
// just an ordinary auth.Callback, registered the same way any other
// observer is (spec §4.B "Callbacks are registered at any time"), so it
// observes exactly what every other callback observes. Peers evicted
// through the disconnect intake publish no notification, so they are not
// subtracted from the authorized-peers gauge.
func Register(m *auth.Manager) error {
	return m.RegisterCallback(func(peerID string, status auth.PeerStatus) error {
		transitions.WithLabelValues(status.String()).Inc()
		switch status {
		case auth.StatusAuthorized:
			authorizedPeers.Inc()
		case auth.StatusUnauthorized:
			authorizedPeers.Dec()
		}
		return nil
	})
}

// CountCallbackError is exposed for callers that wrap other callbacks
// and want failures counted under peerauth_callback_errors_total, e.g. a
// handshake handler reporting a failed notification from a third-party
// observer. The manager's own fanout logs callback errors but does not
// call this.
func CountCallbackError() {
	callbackErrors.Inc()
}
