package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "reelsocial-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	span.SetError(errors.New("ignored"))
	span.End()
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:  "reelsocial-test",
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 1.0,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	span, _ := NewSpan(context.Background(), "PostService.CreateStandardPost")
	assert.Len(t, span.TraceID(), 32)
	span.End()
}

func TestRecordEngagement(t *testing.T) {
	before := testutil.ToFloat64(PostEngagementTotal.WithLabelValues(EngagementLike))
	RecordEngagement(EngagementLike)
	assert.Equal(t, before+1, testutil.ToFloat64(PostEngagementTotal.WithLabelValues(EngagementLike)))
}

func TestDatabaseMetrics_TrackQuery(t *testing.T) {
	m := NewDatabaseMetrics("postgres")
	done := m.TrackQuery("list", "posts")
	done()

	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency), 1)
}

func TestObserveCatalogRequest(t *testing.T) {
	ObserveCatalogRequest("search", time.Now(), nil)
	ObserveCatalogRequest("search", time.Now(), errors.New("boom"))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(CatalogRequestLatency), 2)
}
