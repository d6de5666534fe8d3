package redis

import (
	"context"
	"testing"

	"github.com/covera-io/covera/pkg/config"
)

// A disabled client must satisfy the whole cache surface as no-ops so the
// API and scheduler run without a Redis deployment.
func TestDisabledClientIsNoOp(t *testing.T) {
	client, err := New(&config.Config{})
	if err != nil {
		t.Fatalf("New() with redis disabled failed: %v", err)
	}
	defer client.Close()

	if client.Enabled() {
		t.Error("Enabled() = true for a disabled client")
	}

	cache := NewCache(client, "covera")
	ctx := context.Background()

	var dest map[string]string
	hit, err := cache.Get(ctx, "kpi:series:1", &dest)
	if err != nil {
		t.Errorf("Get() error = %v, want nil", err)
	}
	if hit {
		t.Error("Get() reported a cache hit on a disabled client")
	}

	if err := cache.Set(ctx, "kpi:series:1", map[string]string{"a": "b"}, 0); err != nil {
		t.Errorf("Set() error = %v, want nil", err)
	}
	if err := cache.Delete(ctx, "kpi:series:1"); err != nil {
		t.Errorf("Delete() error = %v, want nil", err)
	}
	if err := cache.Publish(ctx, "alerts", "event"); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}

	if events := cache.Subscribe(ctx, "alerts"); events != nil {
		t.Error("Subscribe() returned a channel on a disabled client")
	}
}
