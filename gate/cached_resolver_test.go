package gate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-quotes/gate"
)

func TestCachedResolver_CachesProfile(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticProfile(1, "accountant"))

	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)

	p1, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.Name() != "accountant" {
		t.Errorf("expected 'accountant', got '%s'", p1.Name())
	}

	inner.Set(1, gate.NewStaticProfile(1, "admin"))

	p2, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.Name() != "accountant" {
		t.Errorf("expected cached 'accountant', got '%s'", p2.Name())
	}
	if inner.Calls() != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.Calls())
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticProfile(1, "accountant"))

	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)
	_, _ = cached.Resolve(context.Background(), 1)

	inner.Set(1, gate.NewStaticProfile(1, "admin"))
	cached.Invalidate(1)

	p, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "admin" {
		t.Errorf("expected 'admin' after invalidation, got '%s'", p.Name())
	}
}

func TestCachedResolver_InvalidateAll(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticProfile(1, "accountant"))
	inner.Set(2, gate.NewStaticProfile(2, "viewer"))

	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)
	_, _ = cached.Resolve(context.Background(), 1)
	_, _ = cached.Resolve(context.Background(), 2)

	inner.Set(1, gate.NewStaticProfile(1, "admin"))
	inner.Set(2, gate.NewStaticProfile(2, "admin"))
	cached.InvalidateAll()

	p1, _ := cached.Resolve(context.Background(), 1)
	p2, _ := cached.Resolve(context.Background(), 2)
	if p1.Name() != "admin" || p2.Name() != "admin" {
		t.Error("expected both profiles to be 'admin' after InvalidateAll")
	}
}

func TestCachedResolver_TTLExpiry(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticProfile(1, "accountant"))

	cached := gate.NewCachedResolver[uint](inner, 10*time.Millisecond)
	_, _ = cached.Resolve(context.Background(), 1)

	inner.Set(1, gate.NewStaticProfile(1, "admin"))
	time.Sleep(20 * time.Millisecond)

	p, _ := cached.Resolve(context.Background(), 1)
	if p.Name() != "admin" {
		t.Errorf("expected 'admin' after TTL expiry, got '%s'", p.Name())
	}
}

func TestCachedResolver_NoProfileIsNil(t *testing.T) {
	cached := gate.NewCachedResolver[uint](gate.NewStaticResolver[uint](), time.Minute)
	p, err := cached.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %v", p)
	}
}

func TestCachedResolver_ConcurrentResolve(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticProfile(1, "accountant"))
	cached := gate.NewCachedResolver[uint](inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cached.Resolve(context.Background(), 1)
			if err != nil || p == nil || p.Name() != "accountant" {
				t.Errorf("unexpected result: %v %v", p, err)
			}
		}()
	}
	wg.Wait()

	if inner.Calls() > 20 {
		t.Errorf("inner resolver called %d times", inner.Calls())
	}
}
