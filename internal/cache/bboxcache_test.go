package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
)

type countingStore struct {
	mu    sync.Mutex
	calls int32
	ids   []model.FeatureID
}

func (s *countingStore) QueryBBox(_ context.Context, _ model.BBox) ([]model.FeatureID, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids, nil
}

func (s *countingStore) ListAll(_ context.Context) ([]model.FeatureID, error) {
	return s.ids, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuantize(t *testing.T) {
	b := model.BBox{MinX: 1.23456, MinY: 2, MaxX: 3.1, MaxY: 4}
	if got := Quantize(b); got != "1.235,2.000,3.100,4.000" {
		t.Fatalf("Quantize = %q", got)
	}
}

func TestGetCachesSecondCall(t *testing.T) {
	store := &countingStore{ids: []model.FeatureID{"a", "b", "c"}}
	c := New(store, 0, discard())
	b := model.BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}

	first, err := c.Get(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Get(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}

	if atomic.LoadInt32(&store.calls) != 1 {
		t.Fatalf("store queried %d times, want 1", store.calls)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("unexpected results: %v, %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("results differ between calls: %v vs %v", first, second)
		}
	}
}

func TestGetQuantizationCollision(t *testing.T) {
	store := &countingStore{ids: []model.FeatureID{"a"}}
	c := New(store, 0, discard())

	b1 := model.BBox{MinX: 0.00001, MinY: 0, MaxX: 1, MaxY: 1}
	b2 := model.BBox{MinX: 0.00002, MinY: 0, MaxX: 1, MaxY: 1}

	if _, err := c.Get(context.Background(), b1); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), b2); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&store.calls) != 1 {
		t.Fatalf("store queried %d times, want 1 (keys should collide)", store.calls)
	}
}

func TestGetEvictsOnNewBox(t *testing.T) {
	store := &countingStore{ids: []model.FeatureID{"a"}}
	c := New(store, 0, discard())

	b1 := model.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	b2 := model.BBox{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6}

	for _, b := range []model.BBox{b1, b2, b1} {
		if _, err := c.Get(context.Background(), b); err != nil {
			t.Fatal(err)
		}
	}
	// Single slot: returning to b1 after b2 queries again.
	if atomic.LoadInt32(&store.calls) != 3 {
		t.Fatalf("store queried %d times, want 3", store.calls)
	}
}

func TestClear(t *testing.T) {
	store := &countingStore{ids: []model.FeatureID{"a"}}
	c := New(store, 0, discard())
	b := model.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	if _, err := c.Get(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if _, err := c.Get(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&store.calls) != 2 {
		t.Fatalf("store queried %d times after clear, want 2", store.calls)
	}
}

func TestGetConcurrentSameKeySingleFlight(t *testing.T) {
	block := make(chan struct{})
	store := &blockingStore{release: block, ids: []model.FeatureID{"a", "b"}}
	c := New(store, 0, discard())
	b := model.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	missesBefore := testutil.ToFloat64(observability.BBoxCacheOutcome("miss"))

	const n = 8
	var entered, done sync.WaitGroup
	entered.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			entered.Done()
			if _, err := c.Get(context.Background(), b); err != nil {
				t.Error(err)
			}
		}()
	}

	// Let all goroutines pile up on the in-flight query, then release.
	entered.Wait()
	time.Sleep(50 * time.Millisecond)
	close(block)
	done.Wait()

	if got := atomic.LoadInt32(&store.calls); got != 1 {
		t.Fatalf("store queried %d times, want 1 (single flight)", got)
	}
	// One spatial query means one recorded miss, no matter how many
	// requests shared the flight.
	misses := testutil.ToFloat64(observability.BBoxCacheOutcome("miss")) - missesBefore
	if misses != 1 {
		t.Fatalf("recorded %.0f misses, want 1", misses)
	}
}

type blockingStore struct {
	calls   int32
	release chan struct{}
	ids     []model.FeatureID
}

func (s *blockingStore) QueryBBox(_ context.Context, _ model.BBox) ([]model.FeatureID, error) {
	atomic.AddInt32(&s.calls, 1)
	<-s.release
	return s.ids, nil
}

func (s *blockingStore) ListAll(_ context.Context) ([]model.FeatureID, error) {
	return s.ids, nil
}
