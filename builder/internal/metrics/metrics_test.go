package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusError, StatusOf(errors.New("boom")))
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(CompilationsTotal.WithLabelValues("compiled"))
	CompilationsTotal.WithLabelValues("compiled").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CompilationsTotal.WithLabelValues("compiled")))

	LiveSessions.Inc()
	LiveSessions.Dec()
	assert.Equal(t, float64(0), testutil.ToFloat64(LiveSessions))
}
