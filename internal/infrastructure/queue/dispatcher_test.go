package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/infrastructure/metrics"
)

type recordingRepo struct {
	mu      sync.Mutex
	entries []domain.Activity
	fail    bool
}

func (r *recordingRepo) Insert(_ context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	r.entries = append(r.entries, *a)
	return nil
}

func (r *recordingRepo) snapshot() []domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Activity(nil), r.entries...)
}

func queueDepth(t *testing.T, worker string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.ActivityQueueDepth.WithLabelValues(worker).Write(&m); err != nil {
		t.Fatalf("read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestDispatcher_RecordsEntries(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.Activity{Type: domain.ActivityListingCreated, SubjectID: "l1"})
	d.Record(domain.Activity{Type: domain.ActivityQuoteSubmitted, SubjectID: "l1"})
	d.Record(domain.Activity{Type: domain.ActivityRatingSubmitted, SubjectID: "u9"})

	cancel()
	d.Wait()

	entries := repo.snapshot()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("expected id and timestamp to be stamped: %+v", e)
		}
	}

	// Entries for one subject keep their order.
	var l1 []domain.ActivityType
	for _, e := range entries {
		if e.SubjectID == "l1" {
			l1 = append(l1, e.Type)
		}
	}
	if len(l1) != 2 || l1[0] != domain.ActivityListingCreated || l1[1] != domain.ActivityQuoteSubmitted {
		t.Fatalf("unexpected order for l1: %v", l1)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	baseline := queueDepth(t, "0")

	// Workers are not started, so the channel fills up.
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.Activity{Type: domain.ActivityQuoteRejected, SubjectID: "q1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	// Dropped entries must not count towards the depth.
	if got := queueDepth(t, "0") - baseline; got != channelBuffer {
		t.Fatalf("expected depth %d while full, got %v", channelBuffer, got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := len(repo.snapshot()); got != channelBuffer {
		t.Fatalf("expected %d drained entries, got %d", channelBuffer, got)
	}
	if got := queueDepth(t, "0"); got != baseline {
		t.Fatalf("expected depth back at %v after drain, got %v", baseline, got)
	}
}

func TestDispatcher_InsertFailureDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	d.Record(domain.Activity{Type: domain.ActivityUserRegistered, SubjectID: "u1"})
	cancel()
	d.Wait()

	if len(repo.snapshot()) != 0 {
		t.Fatal("expected no stored entries")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingRepo{}, zerolog.Nop())
	for _, id := range []string{"a", "listing-42", ""} {
		first := d.shardIndex(id)
		if first < 0 || first >= 4 {
			t.Fatalf("index %d out of range", first)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard index for %q is not stable", id)
		}
	}
}
