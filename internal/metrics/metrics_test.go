package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint", "200")
		IncTransition("confirm", "admin", "ok")
	})

	before := testutil.ToFloat64(priceFetches.WithLabelValues("fallback"))
	IncPriceFetch("fallback")
	assert.Equal(t, before+1, testutil.ToFloat64(priceFetches.WithLabelValues("fallback")))

	SubscriberOpened()
	SubscriberOpened()
	SubscriberClosed()
	assert.Equal(t, float64(1), testutil.ToFloat64(subscribers))
	SubscriberClosed()
}
