package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

const dbMetricsStartKey = "telemetry:db_metrics_start"

// DBMetrics records query counts and latency through GORM callbacks and
// observes connection pool state on every collection.
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowThreshold  time.Duration
	registration   metric.Registration
}

// NewDBMetrics creates the database instruments. Pool gauges are only
// registered when sqlDB is non-nil.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if slowThreshold == 0 {
		slowThreshold = 200 * time.Millisecond
	}

	m := &DBMetrics{slowThreshold: slowThreshold}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total",
		"Total number of database queries by operation type", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Total number of slow database queries", "{query}"); err != nil {
		return nil, err
	}

	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		return nil
	}, conns, maxConns)
	return err
}

// Stop unregisters the pool callback.
func (m *DBMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return "purchasing:db_metrics"
}

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op            string
		before, after callbackRegistrar
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		op := h.op
		if err := h.before("db_metrics:before_"+op, func(tx *gorm.DB) {
			tx.InstanceSet(dbMetricsStartKey, time.Now())
		}); err != nil {
			return err
		}
		if err := h.after("db_metrics:after_"+op, func(tx *gorm.DB) {
			m.record(tx, op)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *DBMetrics) record(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(dbMetricsStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}

	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	failed := tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", op),
		attribute.String("db.table", tx.Statement.Table),
		attribute.Bool("error", failed),
	}

	elapsed := time.Since(start)
	m.queryTotal.Inc(ctx, attrs...)
	m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
	if elapsed > m.slowThreshold {
		m.slowQueryTotal.Inc(ctx, attrs...)
	}
}
