package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"kwclassify/internal/models"
)

type fakeSource map[models.JobStatus]int

func (f fakeSource) CountByStatus() map[models.JobStatus]int { return f }

func TestJobCollector(t *testing.T) {
	collector := NewJobCollector(fakeSource{
		models.JobProcessing: 2,
		models.JobCompleted:  5,
	})

	expected := `
# HELP kwclassify_jobs Number of classification jobs by status
# TYPE kwclassify_jobs gauge
kwclassify_jobs{status="completed"} 5
kwclassify_jobs{status="failed"} 0
kwclassify_jobs{status="pending"} 0
kwclassify_jobs{status="processing"} 2
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected), "kwclassify_jobs")
	assert.NoError(t, err)
}

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(decisions.WithLabelValues(DecisionFallback))
	RecordDecision(DecisionFallback)
	RecordDecision(DecisionFallback)
	assert.Equal(t, before+2, testutil.ToFloat64(decisions.WithLabelValues(DecisionFallback)))
}

func TestObserveModelRequest(t *testing.T) {
	before := testutil.ToFloat64(modelRequests.WithLabelValues(OutcomeSuccess))
	ObserveModelRequest(OutcomeSuccess, 150*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(modelRequests.WithLabelValues(OutcomeSuccess)))
}
