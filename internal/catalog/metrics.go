package catalog

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	metersOnce sync.Once
	metersErr  error

	pagesFetched  metric.Int64Counter
	staleDiscards metric.Int64Counter
	fetchFailures metric.Int64Counter
)

func initMeters() error {
	metersOnce.Do(func() {
		meter := otel.Meter("appcore/catalog")

		pagesFetched, metersErr = meter.Int64Counter(
			"catalog.page_fetch_count",
			metric.WithDescription("Catalog pages fetched and merged"),
			metric.WithUnit("page"),
		)
		if metersErr != nil {
			return
		}

		staleDiscards, metersErr = meter.Int64Counter(
			"catalog.stale_discard_count",
			metric.WithDescription("Page responses discarded because their search series was superseded"),
			metric.WithUnit("response"),
		)
		if metersErr != nil {
			return
		}

		fetchFailures, metersErr = meter.Int64Counter(
			"catalog.page_fetch_failure_count",
			metric.WithDescription("Catalog page fetches that failed"),
			metric.WithUnit("request"),
		)
	})

	return metersErr
}
