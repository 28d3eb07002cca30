package profiler

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetric(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 2})
	rp.RecordMetric("changed", 10)
	rp.RecordMetric("changed", 4)
	rp.RecordMetric("changed", 6)

	report := rp.Report()
	m, ok := report.Metrics["changed"]
	require.True(t, ok)
	assert.Equal(t, int64(3), m.Count)
	assert.Equal(t, float64(4), m.Min)
	assert.Equal(t, float64(10), m.Max)
	assert.Equal(t, float64(5), m.Avg, "average covers the sliding window of two samples")
	assert.Equal(t, float64(6), m.Last)
}

func TestStartOperationConcurrent(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := rp.StartOperation("sweep")
			time.Sleep(time.Millisecond)
			stop()
		}()
	}
	wg.Wait()

	op := rp.Report().Operations["sweep"]
	assert.Equal(t, int64(8), op.Count)
	assert.GreaterOrEqual(t, op.Min, time.Millisecond)
	assert.GreaterOrEqual(t, op.Max, op.Min)
	assert.Equal(t, op.Total/8, op.Avg)
}

func TestOperationTotalsCoverEveryCall(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 2})
	rp.recordOperationTime("sweep", 10*time.Millisecond)
	rp.recordOperationTime("sweep", 2*time.Millisecond)
	rp.recordOperationTime("sweep", 4*time.Millisecond)

	op := rp.Report().Operations["sweep"]
	assert.Equal(t, int64(3), op.Count)
	assert.Equal(t, 16*time.Millisecond, op.Total)
	assert.Equal(t, 3*time.Millisecond, op.Avg, "average covers the sliding window of two samples")
	assert.Equal(t, 2*time.Millisecond, op.Min)
	assert.Equal(t, 10*time.Millisecond, op.Max)
}

func TestStartStopSamplesMemory(t *testing.T) {
	var buf bytes.Buffer
	rp := NewRuntimeProfiler(ProfilingOptions{
		SampleInterval: 5 * time.Millisecond,
		ReportInterval: 10 * time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(&buf, nil)),
	})
	rp.Start()
	rp.Start()
	time.Sleep(50 * time.Millisecond)
	rp.Stop()
	rp.Stop()

	report := rp.Report()
	assert.Greater(t, report.MemorySamples, 0)
	assert.Greater(t, report.PeakHeapAlloc, uint64(0))
	assert.Contains(t, buf.String(), "runtime profile")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}
