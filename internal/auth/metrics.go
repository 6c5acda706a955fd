package auth

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metricAttrs = metric.MeasurementOption

var (
	methodPassword  = metric.WithAttributes(attribute.String("login.method", "password"))
	methodFederated = metric.WithAttributes(attribute.String("login.method", "federated"))
)

var (
	metersOnce sync.Once
	metersErr  error

	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
	restores      metric.Int64Counter
)

func initMeters() error {
	metersOnce.Do(func() {
		meter := otel.Meter("appcore/auth")

		logins, metersErr = meter.Int64Counter(
			"auth.login_count",
			metric.WithDescription("Sessions established"),
			metric.WithUnit("session"),
		)
		if metersErr != nil {
			return
		}

		loginFailures, metersErr = meter.Int64Counter(
			"auth.login_failure_count",
			metric.WithDescription("Login attempts that failed after validation"),
			metric.WithUnit("attempt"),
		)
		if metersErr != nil {
			return
		}

		restores, metersErr = meter.Int64Counter(
			"auth.restore_count",
			metric.WithDescription("Sessions restored from durable storage"),
			metric.WithUnit("session"),
		)
	})

	return metersErr
}
