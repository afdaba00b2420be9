package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrans/internal/logging"
	"subtrans/internal/services"
	"subtrans/internal/textutil"
)

// JobStore is the durable persistence contract the engine writes through.
// Implemented by jobstore.Store.
type JobStore interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
	ListByStatus(ctx context.Context, status Status) ([]*Job, error)
}

// GroundTruthSink receives the approved record set when a job is approved.
type GroundTruthSink interface {
	RecordApproval(ctx context.Context, job *Job) error
}

// Notifier receives job lifecycle events. Delivery is best effort; failures
// are logged and never affect the job.
type Notifier interface {
	JobCompleted(ctx context.Context, job *Job) error
	JobFailed(ctx context.Context, job *Job) error
	JobApproved(ctx context.Context, job *Job) error
}

// ClientFactory builds a model client for one settings snapshot. The engine
// calls it at every chunk boundary so provider and model changes apply
// between chunks.
type ClientFactory func(Settings) (ModelClient, error)

const cancelledMessage = "translation cancelled"

// Engine is the top-level orchestrator: it creates jobs, drives their chunk
// processing as background tasks, and answers query, update, approve, and
// cancel operations.
type Engine struct {
	store     JobStore
	settings  *SettingsStore
	limiter   *RateLimiter
	newClient ClientFactory
	sink      GroundTruthSink
	notifier  Notifier
	logger    *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	tasks map[string]*jobTask
	wg    sync.WaitGroup
}

type jobTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithGroundTruthSink wires the sink that receives approved records.
func WithGroundTruthSink(sink GroundTruthSink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithNotifier wires push notifications for job lifecycle events.
func WithNotifier(notifier Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// WithRateLimiter overrides the shared limiter, mainly for tests.
func WithRateLimiter(limiter *RateLimiter) EngineOption {
	return func(e *Engine) {
		e.limiter = limiter
	}
}

// NewEngine constructs an engine over the given store and settings. The
// limiter is shared by every job the engine processes.
func NewEngine(store JobStore, settings *SettingsStore, factory ClientFactory, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	engine := &Engine{
		store:     store,
		settings:  settings,
		newClient: factory,
		logger:    logger.With(logging.String(logging.FieldComponent, "engine")),
		baseCtx:   baseCtx,
		cancel:    cancel,
		tasks:     make(map[string]*jobTask),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.limiter == nil {
		engine.limiter = NewRateLimiter(settings.Snapshot().RequestsPerMinute)
	}
	return engine
}

// Close cancels all in-flight jobs and waits for their loops to observe the
// cancellation. In-flight chunks run to completion first.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// TranslateFile validates the request, creates a job, and starts processing
// it in the background. The returned job is a snapshot; callers poll GetJob
// for progress. With useExisting set, every segment must carry an existing
// translation; they are reused directly and the job completes synchronously
// without model calls.
func (e *Engine) TranslateFile(ctx context.Context, fileID string, segments []Segment, useExisting bool) (*Job, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "translate_file", "file id is required", nil)
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "engine", "translate_file", "segment list is empty", nil)
	}
	for i := range segments {
		if strings.TrimSpace(segments[i].ID) == "" {
			return nil, services.Wrap(services.ErrValidation, "engine", "translate_file",
				fmt.Sprintf("segment %d has no id", i), nil)
		}
		if useExisting && segments[i].ExistingTranslation == nil {
			return nil, services.Wrap(services.ErrValidation, "engine", "translate_file",
				fmt.Sprintf("segment %s has no existing translation to reuse", segments[i].ID), nil)
		}
	}

	job := &Job{
		ID:            fmt.Sprintf("job_%s_%s", textutil.SanitizeToken(fileID), uuid.NewString()),
		FileID:        fileID,
		Segments:      append([]Segment(nil), segments...),
		Status:        StatusPending,
		TotalSegments: len(segments),
		CreatedAt:     time.Now().UTC(),
	}

	if useExisting {
		return e.completeFromExisting(ctx, job)
	}

	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist new job: %w", err)
	}

	job.Status = StatusInProgress
	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job transition: %w", err)
	}

	// Snapshot before the background task starts mutating segments.
	snapshot := *job
	snapshot.Segments = append([]Segment(nil), job.Segments...)

	e.startTask(job)
	return &snapshot, nil
}

// completeFromExisting copies pre-existing translations into the result
// fields and finishes the job without any model calls. TranslateFile has
// already ensured every segment carries one, so the job always completes with
// CompletedSegments equal to TotalSegments.
func (e *Engine) completeFromExisting(ctx context.Context, job *Job) (*Job, error) {
	for i := range job.Segments {
		seg := &job.Segments[i]
		translation := *seg.ExistingTranslation
		confidence := 1.0
		elapsed := 0.0

		seg.ProducedTranslation = &translation
		seg.ConfidenceScore = &confidence
		seg.QualityMetrics = &QualityMetrics{Overall: 0.9, IsNotEmpty: strings.TrimSpace(translation) != ""}
		seg.TranslationTimeSeconds = &elapsed
	}

	job.RefreshProgress()
	job.ComputeAverages()
	job.Status = StatusCompleted
	now := time.Now().UTC()
	job.CompletedAt = &now

	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist reused job: %w", err)
	}

	e.logger.Info("reused existing translations",
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("segments", job.CompletedSegments))
	e.notifyOutcome(ctx, job)
	snapshot := *job
	return &snapshot, nil
}

func (e *Engine) startTask(job *Job) {
	taskCtx, cancelTask := context.WithCancel(e.baseCtx)
	task := &jobTask{cancel: cancelTask, done: make(chan struct{})}

	e.mu.Lock()
	e.tasks[job.ID] = task
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(task.done)
		defer cancelTask()
		defer func() {
			e.mu.Lock()
			delete(e.tasks, job.ID)
			e.mu.Unlock()
		}()
		e.processJob(taskCtx, job)
	}()
}

// processJob drives one job's chunks sequentially. Chunk failures are
// isolated; cancellation is observed at chunk boundaries.
func (e *Engine) processJob(ctx context.Context, job *Job) {
	ctx = services.WithJobID(ctx, job.ID)
	log := e.logger.With(logging.String(logging.FieldJobID, job.ID))

	initial := e.settings.Snapshot()
	builder := NewPromptBuilder(initial.SystemPrompt, initial.SourceLanguage, initial.TargetLanguage)
	chunks := CreateChunks(job.Segments, initial.ChunkSize, initial.MaxPromptTokens, builder)
	log.Info("processing translation job",
		logging.Int("segments", len(job.Segments)),
		logging.Int("chunks", len(chunks)))

	var failedChunks, unresolvedSegments int
	cancelled := false

	for index, chunk := range chunks {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if err := e.limiter.AwaitAdmission(ctx); err != nil {
			cancelled = true
			break
		}

		snapshot := e.settings.Snapshot()
		client, err := e.newClient(snapshot)
		if err != nil {
			log.Error("model client unavailable", logging.Error(err), logging.Int(logging.FieldChunkIndex, index))
			markChunkFailed(chunk, err)
			failedChunks++
		} else {
			processor := NewChunkProcessor(client, e.limiter, snapshot, log)
			outcome := processor.Process(ctx, chunk, index)
			if outcome.Err != nil {
				failedChunks++
				job.ErrorMessage = outcome.Err.Error()
			}
			unresolvedSegments += outcome.Unresolved
		}

		job.RefreshProgress()
		if err := e.store.Save(ctx, job); err != nil {
			// Retried implicitly at the next chunk boundary save.
			log.Warn("persist chunk progress failed", logging.Error(err))
		}
		log.Info("chunk finished",
			logging.Int(logging.FieldChunkIndex, index),
			logging.Int("completed_segments", job.CompletedSegments),
			logging.Int("total_segments", job.TotalSegments))
	}

	job.RefreshProgress()
	job.ComputeAverages()
	now := time.Now().UTC()
	job.CompletedAt = &now

	switch {
	case cancelled:
		job.Status = StatusFailed
		job.ErrorMessage = cancelledMessage
	case failedChunks > 0:
		job.Status = StatusFailed
	case unresolvedSegments > 0:
		job.Status = StatusFailed
		job.ErrorMessage = fmt.Sprintf("%d segments missing from model responses", unresolvedSegments)
	default:
		job.Status = StatusCompleted
	}

	if err := e.store.Save(context.WithoutCancel(ctx), job); err != nil {
		log.Error("persist final job state failed", logging.Error(err))
	}
	log.Info("translation job finished",
		logging.String("status", string(job.Status)),
		logging.Int("failed_chunks", failedChunks),
		logging.Int("unresolved_segments", unresolvedSegments))
	e.notifyOutcome(context.WithoutCancel(ctx), job)
}

// notifyOutcome pushes the job's terminal state to the notifier, if any.
func (e *Engine) notifyOutcome(ctx context.Context, job *Job) {
	if e.notifier == nil {
		return
	}
	var err error
	switch job.Status {
	case StatusCompleted:
		err = e.notifier.JobCompleted(ctx, job)
	case StatusFailed:
		err = e.notifier.JobFailed(ctx, job)
	case StatusApproved:
		err = e.notifier.JobApproved(ctx, job)
	default:
		return
	}
	if err != nil {
		e.logger.Warn("notification failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
}

func markChunkFailed(chunk []Segment, cause error) {
	for i := range chunk {
		markSegmentFailed(&chunk[i], cause)
	}
}

func markSegmentFailed(seg *Segment, cause error) {
	zeroScore := 0.0
	zeroTime := 0.0
	failed := FailureMarker(cause)
	seg.ProducedTranslation = &failed
	seg.ConfidenceScore = &zeroScore
	seg.QualityMetrics = &QualityMetrics{}
	seg.TranslationTimeSeconds = &zeroTime
}

// GetJob returns one job by id.
func (e *Engine) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return e.store.Get(ctx, jobID)
}

// ListJobs returns all jobs, newest first.
func (e *Engine) ListJobs(ctx context.Context) ([]*Job, error) {
	return e.store.List(ctx)
}

// ListJobsByStatus returns the jobs currently in the given state, newest
// first.
func (e *Engine) ListJobsByStatus(ctx context.Context, status Status) ([]*Job, error) {
	if !status.Valid() {
		return nil, services.Wrap(services.ErrValidation, "engine", "list_jobs",
			fmt.Sprintf("unknown status %q", status), nil)
	}
	return e.store.ListByStatus(ctx, status)
}

// UpdateSegment overwrites one segment's translation with a human
// correction, rescoring it and refreshing the job's aggregates. Only settled
// jobs accept corrections; while the processing loop is live it holds its own
// copy of the job and would overwrite the edit at the next chunk save.
func (e *Engine) UpdateSegment(ctx context.Context, jobID, segmentID, translation string) (*Job, error) {
	job, err := e.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusPending || job.Status == StatusInProgress {
		return nil, services.Wrap(services.ErrInvalidState, "engine", "update_segment",
			fmt.Sprintf("job %s is %s, wait for it to settle before editing segments", jobID, job.Status), nil)
	}

	found := false
	for i := range job.Segments {
		if job.Segments[i].ID != segmentID {
			continue
		}
		found = true
		scorer := NewScorer(e.settings.Snapshot().TargetLanguage)
		confidence, metrics := scorer.Score(job.Segments[i].OriginalText, translation)
		updated := translation

		job.Segments[i].ProducedTranslation = &updated
		job.Segments[i].ConfidenceScore = &confidence
		job.Segments[i].QualityMetrics = &metrics
		break
	}
	if !found {
		return nil, services.Wrap(services.ErrNotFound, "engine", "update_segment",
			fmt.Sprintf("segment %s not found in job %s", segmentID, jobID), nil)
	}

	job.RefreshProgress()
	job.ComputeAverages()
	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist segment update: %w", err)
	}
	return job, nil
}

// Approve emits the job's ground-truth records and transitions it to
// approved. Only completed jobs can be approved; the sink failure leaves the
// job in completed so approval can be retried.
func (e *Engine) Approve(ctx context.Context, jobID string) (*Job, error) {
	job, err := e.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusCompleted {
		return nil, services.Wrap(services.ErrInvalidState, "engine", "approve",
			fmt.Sprintf("job %s is %s, only completed jobs can be approved", jobID, job.Status), nil)
	}

	if e.sink != nil {
		if err := e.sink.RecordApproval(ctx, job); err != nil {
			return nil, fmt.Errorf("record ground truth: %w", err)
		}
	}

	job.Status = StatusApproved
	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist approval: %w", err)
	}
	e.logger.Info("job approved", logging.String(logging.FieldJobID, job.ID))
	e.notifyOutcome(ctx, job)
	return job, nil
}

// Cancel stops a job's processing loop. The in-flight chunk settles first;
// the job ends failed with a cancellation message. Terminal jobs cannot be
// cancelled.
func (e *Engine) Cancel(ctx context.Context, jobID string) (*Job, error) {
	job, err := e.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusPending && job.Status != StatusInProgress {
		return nil, services.Wrap(services.ErrInvalidState, "engine", "cancel",
			fmt.Sprintf("job %s is %s and cannot be cancelled", jobID, job.Status), nil)
	}

	e.mu.Lock()
	task, running := e.tasks[jobID]
	e.mu.Unlock()

	if running {
		task.cancel()
		<-task.done
		return e.store.Get(ctx, jobID)
	}

	// No live task, e.g. a job orphaned by a crash. Mark it directly.
	job.Status = StatusFailed
	job.ErrorMessage = cancelledMessage
	now := time.Now().UTC()
	job.CompletedAt = &now
	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}
	return job, nil
}

// Metrics summarizes translation activity across all jobs.
type Metrics struct {
	TotalJobs               int      `json:"total_jobs"`
	CompletedJobs           int      `json:"completed_jobs"`
	FailedJobs              int      `json:"failed_jobs"`
	ActiveJobs              int      `json:"active_jobs"`
	TotalSegmentsTranslated int      `json:"total_segments_translated"`
	AverageConfidence       *float64 `json:"average_confidence,omitempty"`
	AverageQualityScore     *float64 `json:"average_quality_score,omitempty"`
}

// Metrics computes aggregate statistics. Averages cover completed and
// approved jobs only.
func (e *Engine) Metrics(ctx context.Context) (Metrics, error) {
	jobs, err := e.store.List(ctx)
	if err != nil {
		return Metrics{}, err
	}

	var metrics Metrics
	var confidenceSum, qualitySum float64
	var confidenceCount, qualityCount int
	for _, job := range jobs {
		metrics.TotalJobs++
		switch job.Status {
		case StatusCompleted, StatusApproved:
			metrics.CompletedJobs++
			metrics.TotalSegmentsTranslated += job.CompletedSegments
			if job.AverageConfidence != nil {
				confidenceSum += *job.AverageConfidence
				confidenceCount++
			}
			if job.AverageQualityScore != nil {
				qualitySum += *job.AverageQualityScore
				qualityCount++
			}
		case StatusFailed:
			metrics.FailedJobs++
		case StatusPending, StatusInProgress:
			metrics.ActiveJobs++
		}
	}
	if confidenceCount > 0 {
		avg := confidenceSum / float64(confidenceCount)
		metrics.AverageConfidence = &avg
	}
	if qualityCount > 0 {
		avg := qualitySum / float64(qualityCount)
		metrics.AverageQualityScore = &avg
	}
	return metrics, nil
}

// Settings returns the current settings snapshot.
func (e *Engine) Settings() Settings {
	return e.settings.Snapshot()
}

// UpdateSettings replaces the runtime settings. The rate-limit ceiling
// applies at the next admission check; everything else at the next chunk.
func (e *Engine) UpdateSettings(settings Settings) {
	e.settings.Update(settings)
	e.limiter.SetLimit(settings.RequestsPerMinute)
}

// waitJob blocks until the job's background task finishes. No-op when the
// job has no live task.
func (e *Engine) waitJob(jobID string) {
	e.mu.Lock()
	task, ok := e.tasks[jobID]
	e.mu.Unlock()
	if ok {
		<-task.done
	}
}
