package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Generations.WithLabelValues("title", OutcomeSuccess))
	Generations.WithLabelValues("title", OutcomeSuccess).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Generations.WithLabelValues("title", OutcomeSuccess)))
}

func TestHandler(t *testing.T) {
	CreditReservations.WithLabelValues(OutcomeReserved).Inc()
	ObserveGeneration("full", time.Now().Add(-time.Second))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "smartstore_credit_reservations_total")
	assert.Contains(t, string(body), "smartstore_generation_duration_seconds_bucket")
}
