package metrics

import (
	"strconv"
	"time"
)

// HTTPRequest records a served request. route is the matched mux pattern,
// which keeps the label set bounded.
func HTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
