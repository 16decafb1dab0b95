package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("expected 0 statuses, got %d", len(statuses))
	}
}

func TestRegistryAllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) error { return nil })
	r.Register("engine", func(_ context.Context) error { return nil })

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("all-healthy registry should report healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Name != "database" || statuses[1].Name != "engine" {
		t.Fatalf("statuses should follow registration order, got %+v", statuses)
	}
}

func TestRegistryOneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) error {
		return errors.New("connection refused")
	})
	r.Register("engine", func(_ context.Context) error { return nil })

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Fatal("registry with failing checker should report unhealthy")
	}
	if statuses[0].Healthy || statuses[0].Detail != "connection refused" {
		t.Fatalf("expected failing database status, got %+v", statuses[0])
	}
	if !statuses[1].Healthy {
		t.Fatalf("engine status should stay healthy, got %+v", statuses[1])
	}
}

func TestRegistryCheckTimeout(t *testing.T) {
	r := NewRegistry()
	r.timeout = 20 * time.Millisecond
	r.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	start := time.Now()
	healthy, statuses := r.CheckAll(context.Background())
	if time.Since(start) > time.Second {
		t.Fatal("slow checker should be cut off by the per-check timeout")
	}
	if healthy {
		t.Fatal("timed-out checker should report unhealthy")
	}
	if statuses[0].Detail == "" {
		t.Fatal("timed-out status should carry a detail")
	}
}

func TestRegistryConcurrentRegisterAndCheck(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register("checker", func(_ context.Context) error { return nil })
		}()
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}

	wg.Wait()
}
