package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEvent(t *testing.T, buf *bytes.Buffer) AuditEvent {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "AUDIT: "), line)

	var event AuditEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "AUDIT: ")), &event))
	buf.Reset()
	return event
}

func TestAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditLoggerTo(log.New(&buf, "", 0))

	t.Run("commit", func(t *testing.T) {
		a.LogCommit("res-1", "tx-1", "user-1", 5, "full generation")
		event := lastEvent(t, &buf)
		assert.Equal(t, EventCommit, event.EventType)
		assert.Equal(t, "res-1", event.ReservationID)
		assert.Equal(t, "tx-1", event.TransactionID)
		assert.Equal(t, int64(5), event.Amount)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("reconcile", func(t *testing.T) {
		a.LogReconcile("tx-1", "user-1", "prod-1", 2, errors.New("db down"))
		event := lastEvent(t, &buf)
		assert.Equal(t, EventReconcile, event.EventType)
		assert.Equal(t, "UNRESOLVED", event.Status)
		details := event.Details.(map[string]any)
		assert.Equal(t, "prod-1", details["product_id"])
		assert.Equal(t, "db down", details["error"])
	})

	t.Run("reserve rejected", func(t *testing.T) {
		a.LogReserve("res-2", "user-1", 5, "REJECTED")
		event := lastEvent(t, &buf)
		assert.Equal(t, EventReserve, event.EventType)
		assert.Equal(t, "REJECTED", event.Status)
	})
}
