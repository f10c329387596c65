package namespace

import (
	"context"
	"testing"
	"time"

	"github.com/dmbarbour/glas/pkg/value"
)

func TestPrefetcherWarmsCacheForEveryName(t *testing.T) {
	cache := NewCache(4096)
	env := NewRootEnv(cache).
		WithData("a", value.PushInt(1)).
		WithData("b", value.PushInt(2)).
		WithData("c", value.PushInt(3))

	p := NewPrefetcher(2)
	if err := p.Prepare(context.Background(), env, []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a", "b", "c"} {
		if _, ok := cache.Get(env, name); !ok {
			t.Fatalf("expected %q to be warmed in the cache", name)
		}
	}
}

func TestPrefetcherSilentlyIgnoresUnresolvableNames(t *testing.T) {
	env := NewRootEnv(nil).WithData("present", value.PushInt(1))
	p := NewPrefetcher(4)
	err := p.Prepare(context.Background(), env, []string{"present", "missing", "also-missing"})
	if err != nil {
		t.Fatalf("prepare must not surface a resolution failure, got %v", err)
	}
}

func TestPrefetcherRespectsCancelledContext(t *testing.T) {
	env := NewRootEnv(nil).WithData("a", value.PushInt(1))
	p := NewPrefetcher(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Prepare(ctx, env, []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected an already-cancelled context to abort Prepare")
	}
}

func TestPrefetcherHandlesManyNamesWithNarrowWidth(t *testing.T) {
	env := NewRootEnv(nil)
	names := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		names = append(names, "probe")
	}
	p := NewPrefetcher(2)
	done := make(chan error, 1)
	go func() { done <- p.Prepare(context.Background(), env, names) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prefetch with a narrow worker width did not complete in time")
	}
}
