package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncErrorReported("lifecycle_validation", "lifecycle_missing_key")
	pr.IncErrorReported("lifecycle_validation", "lifecycle_missing_key")
	pr.IncErrorReported("security", "")
	pr.ObserveCommandDuration("validate lifecycles", 150*time.Millisecond)
	pr.IncCommandResult("validate lifecycles", ResultFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.errorsReported.WithLabelValues("lifecycle_validation", "lifecycle_missing_key")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.errorsReported.WithLabelValues("security", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.commandResults.WithLabelValues("validate lifecycles", "failed")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 3)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncErrorReported("security", "decrypt")
		pr.ObserveCommandDuration("decrypt", time.Second)
		pr.IncCommandResult("decrypt", ResultSuccess)
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.IncErrorReported("jervis", "")
		r.ObserveCommandDuration("docs", 0)
		r.IncCommandResult("docs", ResultSuccess)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncErrorReported("generator", "unsupported_tool")

	path := filepath.Join(t.TempDir(), "textfile", "jervis.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jervis_errors_reported_total{category="generator",kind="unsupported_tool"} 1`)
}
