package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.ObserveCycle(3*time.Millisecond, model.Snapshot{CPU: 0.25, Memory: 0.7}, 12)
	r.ObserveCycle(2*time.Millisecond, model.Snapshot{CPU: 0.5, Memory: 0.6}, 10)
	r.SourceDegraded("memory")
	r.SourceDegraded("memory")
	r.SourceDegraded("uptime")
	r.ProcessesVanished(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cycles))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.tracked))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.cpu))
	assert.Equal(t, 0.6, testutil.ToFloat64(r.memory))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.degraded.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degraded.WithLabelValues("uptime")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.vanished))
	assert.Equal(t, 1, testutil.CollectAndCount(r.cycleDuration))
}

func TestServeExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveCycle(time.Millisecond, model.Snapshot{CPU: 0.125}, 1)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.serve(ctx, ln, zerolog.Nop()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, strings.Contains(body, "sysmoni_cpu_utilization_ratio 0.125"), body)
	assert.Contains(t, body, "sysmoni_sampler_cycles_total 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
