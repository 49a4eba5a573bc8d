package trail

import (
	"context"
	"log"
	"sync"
	"time"
)

// Producer is the subset of kafka producer behavior the trail needs.
type Producer interface {
	PublishDecision(ctx context.Context, d *Decision) error
	Close() error
}

// Trail is the fan-out Recorder: decisions are queued and a worker appends
// them to the store, publishes them to Kafka and archives them to S3.
// Recording never blocks the decision path; when the queue is full the
// decision is counted as dropped and the engine moves on.
type Trail struct {
	store    Store
	producer Producer
	archiver Archiver

	queue   chan *Decision
	dropped int
	mu      sync.Mutex
}

// TrailConfig configures the fan-out recorder. Producer and Archiver are
// optional sinks; Store is required.
type TrailConfig struct {
	Store    Store
	Producer Producer
	Archiver Archiver

	// QueueSize bounds the number of decisions waiting to be sunk.
	// Defaults to 1024 if <= 0.
	QueueSize int
}

func NewTrail(cfg TrailConfig) *Trail {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	return &Trail{
		store:    cfg.Store,
		producer: cfg.Producer,
		archiver: cfg.Archiver,
		queue:    make(chan *Decision, cfg.QueueSize),
	}
}

// Record implements Recorder.
func (t *Trail) Record(ctx context.Context, d Decision) {
	if d.ID == "" {
		d.ID = NewUUID()
	}
	if d.Ts.IsZero() {
		d.Ts = time.Now().UTC()
	}
	select {
	case t.queue <- &d:
	default:
		t.mu.Lock()
		t.dropped++
		n := t.dropped
		t.mu.Unlock()
		log.Printf("[trail] queue full, dropped decision %s (%d dropped so far)", d.ID, n)
	}
}

// Dropped returns how many decisions were discarded because the queue was full.
func (t *Trail) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Run drains the queue until ctx is cancelled, then flushes what is already
// queued and closes the producer. Safe to run in a goroutine.
func (t *Trail) Run(ctx context.Context) error {
	log.Printf("[trail] recorder started")
	defer log.Printf("[trail] recorder stopped")

	for {
		select {
		case <-ctx.Done():
			t.flush()
			if t.producer != nil {
				_ = t.producer.Close()
			}
			return ctx.Err()
		case d := <-t.queue:
			t.sink(d)
		}
	}
}

func (t *Trail) flush() {
	for {
		select {
		case d := <-t.queue:
			t.sink(d)
		default:
			return
		}
	}
}

func (t *Trail) sink(d *Decision) {
	// Sinks get their own deadline; the engine's call context is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.store.AppendDecision(ctx, d); err != nil {
		log.Printf("[trail] append decision %s: %v", d.ID, err)
	}
	if t.producer != nil {
		if err := t.producer.PublishDecision(ctx, d); err != nil {
			log.Printf("[trail] publish decision %s: %v", d.ID, err)
		}
	}
	if t.archiver != nil {
		if err := t.archiver.ArchiveDecision(ctx, d); err != nil {
			log.Printf("[trail] archive decision %s: %v", d.ID, err)
		}
	}
}
