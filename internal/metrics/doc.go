// Package metrics counts what the jervis CLI does.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a real implementation is
// injected:
//
//	adapter := errors.NewCLIErrorAdapter(verbose, logger)
//	if path != "" {
//	    reg := prometheus.NewRegistry()
//	    adapter.WithRecorder(metrics.NewPrometheusRecorder(reg))
//	    defer metrics.WriteTextfile(path, reg)
//	}
//
// The CLI is short-lived, so metrics are exported as a node_exporter
// textfile rather than served over HTTP.
package metrics
