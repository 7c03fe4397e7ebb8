/*
Package observability provides Prometheus metrics for cache stores.

Metrics are fed through domain.Hooks, so a store never depends on this
package directly:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	store := cache.New(cache.WithHooks(metrics.Hooks()))
*/
package observability
