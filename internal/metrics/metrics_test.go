package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})

	IncReservationConflict()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["hebergement_reservation_conflict_total"])
}

func TestCounters(t *testing.T) {
	before := counterValue(t, reservationCreated.WithLabelValues("confirmed"))
	IncReservationCreated("confirmed")
	IncReservationCreated("confirmed")
	assert.Equal(t, before+2, counterValue(t, reservationCreated.WithLabelValues("confirmed")))

	IncRoomStatusChange("occupied", "maintenance")
	assert.GreaterOrEqual(t, counterValue(t, roomStatusChange.WithLabelValues("occupied", "maintenance")), 1.0)

	IncReservationTransition("confirmed", "cancelled")
	assert.GreaterOrEqual(t, counterValue(t, reservationTransition.WithLabelValues("confirmed", "cancelled")), 1.0)

	IncHTTPRequest("GET /api/v1/availability", 200)
	assert.GreaterOrEqual(t, counterValue(t, httpRequests.WithLabelValues("GET /api/v1/availability", "200")), 1.0)
}

func TestObserveSearch(t *testing.T) {
	var before dto.Metric
	require.NoError(t, searchDuration.Write(&before))

	ObserveSearch(20 * time.Millisecond)

	var after dto.Metric
	require.NoError(t, searchDuration.Write(&after))
	assert.Equal(t, before.GetHistogram().GetSampleCount()+1, after.GetHistogram().GetSampleCount())
}
