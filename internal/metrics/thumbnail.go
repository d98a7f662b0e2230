package metrics

import "time"

// ThumbnailGenerated records one derivative written to storage
func ThumbnailGenerated(format string, duration time.Duration) {
	ThumbnailsTotal.WithLabelValues(format, "generated").Inc()
	ThumbnailDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// ThumbnailFailed records a derivative that could not be produced
func ThumbnailFailed(format string) {
	ThumbnailsTotal.WithLabelValues(format, "failed").Inc()
}

// ThumbnailDeleted records a removed derivative file
func ThumbnailDeleted() {
	ThumbnailsDeleted.Inc()
}

// Generation records the outcome of a generate call for a delivery strategy
// ("immediate", "queue", "deferred").
func Generation(delivery string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GenerationsTotal.WithLabelValues(delivery, status).Inc()
}

// StreamMessage records a published or consumed stream message
func StreamMessage(stream, direction string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StreamMessagesTotal.WithLabelValues(stream, direction, status).Inc()
}
