package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

func TestObserveExtraction(t *testing.T) {
	m := New(prometheus.NewRegistry())
	errs := []error{
		gwerrors.NewDataError(1, "subject", -1, "x"),
		gwerrors.NewDataError(2, "subject", -1, "y"),
		gwerrors.NewConfigError("c", "m", nil),
	}
	m.ObserveExtraction(10, 20, 15, 12, 2, errs, time.Second)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.Rows))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.Transformations))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.Elements.WithLabelValues("node")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.Elements.WithLabelValues("edge")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NonViable))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues("data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("config")))
}

func TestObserveReconciliation(t *testing.T) {
	m := New(nil)
	m.ObserveReconciliation(3, 4, 5, time.Millisecond)
	m.ObserveReconciliation(1, 0, 1, time.Millisecond)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.MergedGroups.WithLabelValues("node")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.MergedGroups.WithLabelValues("edge")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.FoldedIDs))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtraction(1, 1, 1, 1, 0, nil, 0)
		m.ObserveReconciliation(1, 1, 1, 0)
		m.ObserveErrors([]error{gwerrors.New("x")})
	})
}

func TestRegisteringTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
