/*
Package observability turns machine lifecycle events into Prometheus
metrics and structured log records.

Both are plain domain.LifecycleHooks, so they compose with any other hooks:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	m, err := turingviz.New(def, turingviz.WithLifecycleHooks(metrics.Hooks()))
*/
package observability
