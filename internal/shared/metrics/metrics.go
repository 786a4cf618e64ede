package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	cvStartedTotal       atomic.Uint64
	cvCompletedTotal     atomic.Uint64
	cvFailedTotal        atomic.Uint64
	cvReprocessedTotal   atomic.Uint64
	llmExtractionsTotal  atomic.Uint64
	basicExtractionTotal atomic.Uint64

	jobsReceivedTotal             atomic.Uint64
	jobsCompletedTotal            atomic.Uint64
	jobsFailedTotal               atomic.Uint64
	jobsDeletedUnrecoverableTotal atomic.Uint64

	processingDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncCVStarted increments the started-runs counter.
func IncCVStarted() {
	cvStartedTotal.Add(1)
}

// IncCVCompleted increments the completed-runs counter.
func IncCVCompleted() {
	cvCompletedTotal.Add(1)
}

// IncCVFailed increments the failed-runs counter.
func IncCVFailed() {
	cvFailedTotal.Add(1)
}

// IncCVReprocessed increments the reprocess-requests counter.
func IncCVReprocessed() {
	cvReprocessedTotal.Add(1)
}

// IncLLMExtraction counts pipeline runs routed through the LLM adapter.
func IncLLMExtraction() {
	llmExtractionsTotal.Add(1)
}

// IncBasicExtraction counts pipeline runs routed through the fallback extractor.
func IncBasicExtraction() {
	basicExtractionTotal.Add(1)
}

// IncJobsReceived counts queue messages picked up by the worker.
func IncJobsReceived() {
	jobsReceivedTotal.Add(1)
}

// IncJobsCompleted counts queue messages handled successfully.
func IncJobsCompleted() {
	jobsCompletedTotal.Add(1)
}

// IncJobsFailed counts queue messages whose handling returned an error.
func IncJobsFailed() {
	jobsFailedTotal.Add(1)
}

// IncJobsDeletedUnrecoverable counts malformed messages deleted without processing.
func IncJobsDeletedUnrecoverable() {
	jobsDeletedUnrecoverableTotal.Add(1)
}

// ObserveProcessingDurationMs records one pipeline run duration in milliseconds.
func ObserveProcessingDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	processingDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "cv_processing_started_total", "Total CV pipeline runs started", cvStartedTotal.Load())
	writeCounter(&buf, "cv_processing_completed_total", "Total CV pipeline runs completed", cvCompletedTotal.Load())
	writeCounter(&buf, "cv_processing_failed_total", "Total CV pipeline runs failed", cvFailedTotal.Load())
	writeCounter(&buf, "cv_reprocessed_total", "Total CV reprocess requests", cvReprocessedTotal.Load())
	writeCounter(&buf, "cv_llm_extractions_total", "Total runs extracted via LLM", llmExtractionsTotal.Load())
	writeCounter(&buf, "cv_basic_extractions_total", "Total runs extracted via fallback heuristics", basicExtractionTotal.Load())
	writeCounter(&buf, "cv_worker_jobs_received_total", "Total queue messages received by the worker", jobsReceivedTotal.Load())
	writeCounter(&buf, "cv_worker_jobs_completed_total", "Total queue messages handled successfully", jobsCompletedTotal.Load())
	writeCounter(&buf, "cv_worker_jobs_failed_total", "Total queue messages whose handling failed", jobsFailedTotal.Load())
	writeCounter(&buf, "cv_worker_jobs_deleted_unrecoverable_total", "Total malformed queue messages deleted without processing", jobsDeletedUnrecoverableTotal.Load())
	writeHistogram(&buf, "cv_processing_duration_ms", "CV pipeline run duration in milliseconds", processingDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
