package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("GET", "/healthz", 200, 5*time.Millisecond)
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200")))
}

func TestBookingTransitionCounter(t *testing.T) {
	before := testutil.ToFloat64(bookingTransitions.WithLabelValues("PENDING", "CONFIRMED"))
	IncBookingTransition("PENDING", "CONFIRMED")
	IncBookingTransition("PENDING", "CONFIRMED")
	assert.Equal(t, before+2, testutil.ToFloat64(bookingTransitions.WithLabelValues("PENDING", "CONFIRMED")))

	reviews := testutil.ToFloat64(reviewsSubmitted)
	IncReview()
	assert.Equal(t, reviews+1, testutil.ToFloat64(reviewsSubmitted))

	reminders := testutil.ToFloat64(remindersSent)
	IncReminder()
	assert.Equal(t, reminders+1, testutil.ToFloat64(remindersSent))
}
