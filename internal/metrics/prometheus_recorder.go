package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	errorsReported  *prom.CounterVec
	commandDuration *prom.HistogramVec
	commandResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		errorsReported: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "jervis",
			Name:      "errors_reported_total",
			Help:      "Errors reported to the user by category and kind",
		}, []string{"category", "kind"}),
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "jervis",
			Name:      "command_duration_seconds",
			Help:      "Duration of CLI commands",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		commandResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "jervis",
			Name:      "command_results_total",
			Help:      "CLI command results by outcome",
		}, []string{"command", "result"}),
	}
	reg.MustRegister(pr.errorsReported, pr.commandDuration, pr.commandResults)
	return pr
}

func (p *PrometheusRecorder) IncErrorReported(category, kind string) {
	if p == nil || p.errorsReported == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	p.errorsReported.WithLabelValues(category, kind).Inc()
}

func (p *PrometheusRecorder) ObserveCommandDuration(command string, d time.Duration) {
	if p == nil || p.commandDuration == nil {
		return
	}
	p.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommandResult(command string, result ResultLabel) {
	if p == nil || p.commandResults == nil {
		return
	}
	p.commandResults.WithLabelValues(command, string(result)).Inc()
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format, creating parent directories as needed.
func WriteTextfile(path string, g prom.Gatherer) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
