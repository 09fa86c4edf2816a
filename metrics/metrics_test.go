package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEventRecordsLatencyByKind(t *testing.T) {
	r := New()
	r.ObserveEvent("notification", time.Now().Add(-5*time.Millisecond))

	assert.Equal(t, 1, testutil.CollectAndCount(r.EventLatency))
}

func TestSettlingWindowsCounterIncrements(t *testing.T) {
	r := New()
	r.SettlingWindows.Inc()
	r.SettlingWindows.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(r.SettlingWindows))
}

func TestMailboxDepthGaugeReflectsSet(t *testing.T) {
	r := New()
	r.MailboxDepth.Set(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(r.MailboxDepth))
}
