package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperationRecordsCounterAndHistogram(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("test-op", "success"))

	timer := NewTimer()
	timer.ObserveOperation("test-op", "success")

	after := testutil.ToFloat64(OperationsTotal.WithLabelValues("test-op", "success"))
	assert.Equal(t, before+1, after)

	count := testutil.CollectAndCount(OperationDuration)
	assert.Greater(t, count, 0)
}

func TestTimerDurationIsNonNegative(t *testing.T) {
	timer := NewTimer()
	assert.GreaterOrEqual(t, int64(timer.Duration()), int64(0))
}

func TestHandlerReturnsNonNilHTTPHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}
