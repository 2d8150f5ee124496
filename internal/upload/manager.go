package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phisnet/backend/internal/classify"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/rs/zerolog"
)

const (
	DefaultTickInterval  = 200 * time.Millisecond
	DefaultMaxStartDelay = time.Second
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrClosed         = errors.New("upload manager closed")
)

// Store defines the interface needed from the storage layer.
type Store interface {
	Save(name, contentType string, r io.Reader) (*models.FileInfo, error)
	Delete(id string) error
}

// CompletionSink is told about every record that reaches a terminal state.
type CompletionSink interface {
	OnComplete(ctx context.Context, rec models.UploadRecord) error
}

// Incoming is one file handed over by the drop target.
type Incoming struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Options tunes the simulated pipeline. Zero values take the defaults, except
// MaxStartDelay where zero starts every record immediately.
type Options struct {
	TickInterval  time.Duration
	MaxStartDelay time.Duration
	MaxFileSize   int64
	Seed          int64 // 0 seeds from the clock
	SinkTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.MaxStartDelay < 0 {
		o.MaxStartDelay = 0
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = classify.MaxFileSize
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = 5 * time.Second
	}
	return o
}

// Manager owns the ordered record collection and runs one ticker goroutine
// per in-flight record. Records are stored by value and replaced on every
// write, so readers only ever see copies.
type Manager struct {
	mu      sync.Mutex
	records map[string]models.UploadRecord
	order   []string
	runners map[string]context.CancelFunc
	rng     *rand.Rand // guarded by mu
	closed  bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	store      Store
	classifier classify.Classifier
	sinks      []CompletionSink
	opts       Options

	subsMu     sync.RWMutex
	subs       map[int]chan Event
	nextSub    int
	subsClosed bool

	log zerolog.Logger
}

// NewManager creates a new upload simulator.
func NewManager(store Store, classifier classify.Classifier, opts Options, sinks ...CompletionSink) *Manager {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		records:    make(map[string]models.UploadRecord),
		runners:    make(map[string]context.CancelFunc),
		rng:        rand.New(rand.NewSource(opts.Seed)),
		ctx:        ctx,
		cancel:     cancel,
		store:      store,
		classifier: classifier,
		sinks:      sinks,
		opts:       opts,
		subs:       make(map[int]chan Event),
		log:        logger.Component("upload"),
	}
}

// AcceptFiles validates the dropped files, stores the accepted ones and
// schedules their simulated analysis. Files failing validation produce a
// rejection and no record.
func (m *Manager) AcceptFiles(files []Incoming) ([]models.UploadRecord, []models.Rejection) {
	accepted := make([]models.UploadRecord, 0, len(files))
	var rejected []models.Rejection

	for _, f := range files {
		rec, err := m.accept(f)
		if err != nil {
			rejected = append(rejected, models.Rejection{
				FileName: f.Name,
				Size:     f.Size,
				Code:     rejectionCode(err),
				Reason:   err.Error(),
			})
			m.log.Info().Str("file", f.Name).Int64("size", f.Size).Err(err).Msg("file rejected")
			continue
		}
		accepted = append(accepted, rec)
	}

	return accepted, rejected
}

func rejectionCode(err error) string {
	if errors.Is(err, ErrClosed) {
		return "SHUTTING_DOWN"
	}
	return classify.RejectionCode(err)
}

func (m *Manager) accept(f Incoming) (models.UploadRecord, error) {
	if err := classify.Validate(f.Name, f.ContentType, f.Size, m.opts.MaxFileSize); err != nil {
		return models.UploadRecord{}, err
	}

	body := f.Body
	if body == nil {
		body = strings.NewReader("")
	}
	// The declared size can lie; never store more than the ceiling allows.
	info, err := m.store.Save(f.Name, f.ContentType, io.LimitReader(body, m.opts.MaxFileSize+1))
	if err != nil {
		return models.UploadRecord{}, fmt.Errorf("storing %s: %w", f.Name, err)
	}
	if info.Size > m.opts.MaxFileSize {
		m.deleteBlob(info.ID)
		return models.UploadRecord{}, fmt.Errorf("%w: more than %d bytes", classify.ErrFileTooLarge, m.opts.MaxFileSize)
	}

	now := time.Now()
	rec := models.UploadRecord{
		ID:          uuid.New().String(),
		FileRef:     info.ID,
		FileName:    f.Name,
		ContentType: f.ContentType,
		Size:        info.Size,
		Category:    classify.DetectCategory(f.Name, f.ContentType),
		Progress:    0,
		Status:      models.UploadStatusUploading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.deleteBlob(info.ID)
		return models.UploadRecord{}, ErrClosed
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	ctx, cancel := context.WithCancel(m.ctx)
	m.runners[rec.ID] = cancel
	delay := m.startDelayLocked()
	m.wg.Add(1)
	m.publish(newRecordEvent(EventCreated, rec.Clone()))
	m.mu.Unlock()

	m.log.Info().
		Str("record", logger.ShortID(rec.ID)).
		Str("file", rec.FileName).
		Str("category", string(rec.Category)).
		Dur("startDelay", delay).
		Msg("record created")

	go m.run(ctx, rec.ID, delay)

	return rec.Clone(), nil
}

func (m *Manager) startDelayLocked() time.Duration {
	if m.opts.MaxStartDelay <= 0 {
		return 0
	}
	return time.Duration(m.rng.Int63n(int64(m.opts.MaxStartDelay)))
}

// run drives one record until it is terminal, removed, or the manager closes.
func (m *Manager) run(ctx context.Context, id string, delay time.Duration) {
	defer m.wg.Done()
	defer m.forgetRunner(id)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(m.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec, err := m.tick(ctx, id)
			if err != nil {
				return
			}
			if rec.Status.Terminal() {
				return
			}
		}
	}
}

func (m *Manager) forgetRunner(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.runners[id]; ok {
		cancel()
		delete(m.runners, id)
	}
}

// Tick applies one progress step to a record. Ticking a terminal record
// returns it unchanged.
func (m *Manager) Tick(id string) (models.UploadRecord, error) {
	return m.tick(m.ctx, id)
}

func (m *Manager) tick(ctx context.Context, id string) (models.UploadRecord, error) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return models.UploadRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if rec.Status.Terminal() {
		m.mu.Unlock()
		return rec.Clone(), nil
	}

	next := NextProgress(rec.Progress, m.rng)
	if next < 100 {
		rec.Progress = next
		rec.Status = StatusFor(next)
		rec.UpdatedAt = time.Now()
		m.records[id] = rec
		m.publish(newRecordEvent(EventUpdated, rec.Clone()))
		m.mu.Unlock()

		return rec.Clone(), nil
	}
	m.mu.Unlock()

	// The classifier may be slow; it runs without the lock held.
	result, classifyErr := m.classifier.Classify(ctx, rec)
	if classifyErr != nil && ctx.Err() != nil {
		return models.UploadRecord{}, ctx.Err()
	}
	if classifyErr == nil && result == nil {
		classifyErr = classify.ErrAnalysisFailed
	}

	m.mu.Lock()
	cur, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return models.UploadRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if cur.Status.Terminal() {
		// A concurrent tick finished first.
		m.mu.Unlock()
		return cur.Clone(), nil
	}

	now := time.Now()
	cur.Progress = 100
	cur.UpdatedAt = now
	cur.CompletedAt = &now
	if classifyErr != nil {
		cur.Status = models.UploadStatusError
		cur.Error = classifyErr.Error()
		cur.Result = nil
	} else {
		cur.Status = models.UploadStatusCompleted
		cur.Result = result
	}
	m.records[id] = cur
	done := cur.Clone()
	m.publish(newRecordEvent(EventUpdated, done.Clone()))
	m.mu.Unlock()

	m.logTerminal(done)
	m.notifySinks(done)

	return done, nil
}

func (m *Manager) logTerminal(rec models.UploadRecord) {
	if rec.Status == models.UploadStatusError {
		m.log.Warn().Str("record", logger.ShortID(rec.ID)).Str("file", rec.FileName).Str("error", rec.Error).Msg("analysis failed")
		return
	}
	m.log.Info().
		Str("record", logger.ShortID(rec.ID)).
		Str("file", rec.FileName).
		Str("risk", string(rec.Result.Risk)).
		Int("confidence", rec.Result.Confidence).
		Msg("analysis complete")
}

func (m *Manager) notifySinks(rec models.UploadRecord) {
	for _, sink := range m.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.SinkTimeout)
		if err := sink.OnComplete(ctx, rec.Clone()); err != nil {
			m.log.Error().Err(err).Str("record", logger.ShortID(rec.ID)).Msg("completion sink failed")
		}
		cancel()
	}
}

// RemoveRecord deletes a record, stops its ticker and releases its blob.
func (m *Manager) RemoveRecord(id string) error {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	if cancel, ok := m.runners[id]; ok {
		cancel()
		delete(m.runners, id)
	}
	m.publish(Event{Type: EventRemoved, ID: id, Timestamp: time.Now().UnixMilli()})
	m.mu.Unlock()

	m.deleteBlob(rec.FileRef)
	m.log.Info().Str("record", logger.ShortID(id)).Str("status", string(rec.Status)).Msg("record removed")
	return nil
}

// ClearAll removes every record and returns how many were dropped.
func (m *Manager) ClearAll() int {
	m.mu.Lock()
	dropped := make([]models.UploadRecord, 0, len(m.order))
	for _, id := range m.order {
		dropped = append(dropped, m.records[id])
	}
	for id, cancel := range m.runners {
		cancel()
		delete(m.runners, id)
	}
	m.records = make(map[string]models.UploadRecord)
	m.order = nil
	m.publish(Event{Type: EventCleared, Count: len(dropped), Timestamp: time.Now().UnixMilli()})
	m.mu.Unlock()

	for _, rec := range dropped {
		m.deleteBlob(rec.FileRef)
	}
	m.log.Info().Int("count", len(dropped)).Msg("records cleared")
	return len(dropped)
}

func (m *Manager) deleteBlob(fileRef string) {
	if fileRef == "" {
		return
	}
	if err := m.store.Delete(fileRef); err != nil {
		m.log.Warn().Err(err).Str("blob", logger.ShortID(fileRef)).Msg("failed to delete blob")
	}
}

// Get returns a copy of one record.
func (m *Manager) Get(id string) (models.UploadRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return models.UploadRecord{}, false
	}
	return rec.Clone(), true
}

// List returns copies of all records in drop order.
func (m *Manager) List() []models.UploadRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listLocked()
}

func (m *Manager) listLocked() []models.UploadRecord {
	out := make([]models.UploadRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}
	return out
}

// Stats summarizes the collection.
func (m *Manager) Stats() models.UploadStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.statsLocked()
}

func (m *Manager) statsLocked() models.UploadStats {
	stats := models.UploadStats{Total: len(m.records)}
	for _, rec := range m.records {
		switch rec.Status {
		case models.UploadStatusCompleted:
			stats.Completed++
			if rec.Result != nil && rec.Result.Risk == models.RiskHigh {
				stats.HighRisk++
			}
		case models.UploadStatusError:
			stats.Failed++
		default:
			stats.Processing++
		}
	}
	return stats
}

// Close stops every ticker, waits for the runners to exit and closes all
// subscriptions. Records stay readable.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	m.closeSubscribers()
	m.log.Info().Msg("upload manager stopped")
}
