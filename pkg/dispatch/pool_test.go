package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsInFlight(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		if err := p.Submit(context.Background(), func() {
			defer wg.Done()
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
		}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	if got := peak.Load(); got > 3 {
		t.Fatalf("peak in-flight = %d, want <= 3", got)
	}
}

func TestPoolSubmitRespectsContext(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	if err := p.Submit(context.Background(), func() { <-release }); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Submit(ctx, func() {}); err == nil {
		t.Fatal("Submit should fail while the pool is saturated and ctx expires")
	}
	close(release)
}

func TestPoolClosed(t *testing.T) {
	p := NewPool(2)
	p.Close()
	if err := p.Submit(context.Background(), func() {}); err != ErrPoolClosed {
		t.Fatalf("err = %v, want ErrPoolClosed", err)
	}
	p.Close()
}
