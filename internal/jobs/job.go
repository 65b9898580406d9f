package jobs

import (
	"sync"
	"time"

	"kwclassify/internal/classifier"
	"kwclassify/internal/models"
)

// Job is one classification run. Its input fields are fixed at creation;
// the status block is written only by the job's own goroutine and read by
// pollers through copy-on-read snapshots.
type Job struct {
	ID        string
	Topic     string
	CreatedAt time.Time

	keywords []models.Keyword
	settings classifier.Settings

	mu             sync.RWMutex
	status         models.JobStatus
	progress       int
	currentKeyword string
	err            string
	results        []models.ClassifiedKeyword
	statistics     models.Statistics
	acceptedFile   string
	rejectedFile   string

	done chan struct{}
}

func newJob(id, topic string, keywords []models.Keyword, settings classifier.Settings) *Job {
	kws := make([]models.Keyword, len(keywords))
	copy(kws, keywords)

	return &Job{
		ID:        id,
		Topic:     topic,
		CreatedAt: time.Now(),
		keywords:  kws,
		settings:  settings.Clone(),
		status:    models.JobPending,
		done:      make(chan struct{}),
	}
}

// Total returns the number of keywords in the job.
func (j *Job) Total() int {
	return len(j.keywords)
}

// Status returns the current status.
func (j *Job) Status() models.JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Done is closed once the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Progress returns a snapshot of the poll view.
func (j *Job) Progress() models.JobProgress {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return models.JobProgress{
		Status:         j.status,
		Progress:       j.progress,
		Total:          len(j.keywords),
		CurrentKeyword: j.currentKeyword,
		Percentage:     models.Percentage(j.progress, len(j.keywords)),
		Error:          j.err,
	}
}

// Results returns a snapshot of the result view, or ErrJobNotReady unless completed.
func (j *Job) Results() (models.JobResults, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.status != models.JobCompleted {
		return models.JobResults{}, ErrJobNotReady
	}

	breakdown := make(map[string]int, len(j.statistics.CategoryBreakdown))
	for k, v := range j.statistics.CategoryBreakdown {
		breakdown[k] = v
	}
	stats := j.statistics
	stats.CategoryBreakdown = breakdown

	return models.JobResults{
		Status:       j.status,
		Statistics:   stats,
		AcceptedFile: j.acceptedFile,
		RejectedFile: j.rejectedFile,
	}, nil
}

// Rows returns a copy of the classified keywords of a completed job.
func (j *Job) Rows() []models.ClassifiedKeyword {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]models.ClassifiedKeyword, len(j.results))
	copy(out, j.results)
	return out
}

func (j *Job) start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == models.JobPending {
		j.status = models.JobProcessing
	}
}

func (j *Job) setCurrent(keyword string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.currentKeyword = keyword
}

func (j *Job) advance(processed int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = processed
}

func (j *Job) complete(stats models.Statistics, rows []models.ClassifiedKeyword, acceptedFile, rejectedFile string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return
	}
	j.status = models.JobCompleted
	j.statistics = stats
	j.results = rows
	j.acceptedFile = acceptedFile
	j.rejectedFile = rejectedFile
	close(j.done)
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return
	}
	j.status = models.JobFailed
	j.err = err.Error()
	close(j.done)
}
