package delta

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

func setupNotifier(t *testing.T) *Notifier {
	t.Helper()

	mr := miniredis.RunT(t)
	n, err := NewNotifier(RedisOptions{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = n.Close()
	})
	return n
}

func TestNotifierCheckpointRoundTrip(t *testing.T) {
	n := setupNotifier(t)
	ctx := context.Background()

	// Never checkpointed yields the zero time.
	at, err := n.Checkpoint(ctx, testTenant)
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	want := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, n.SetCheckpoint(ctx, testTenant, want))

	got, err := n.Checkpoint(ctx, testTenant)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestNotifierPublishSubscribe(t *testing.T) {
	n := setupNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summaries, err := n.Subscribe(ctx, testTenant)
	require.NoError(t, err)

	sent := Summary{
		TenantID:      testTenant,
		Since:         time.Now().UTC().Truncate(time.Second),
		NewViolations: 3,
	}
	require.NoError(t, n.Publish(ctx, sent))

	select {
	case got := <-summaries:
		assert.Equal(t, sent.TenantID, got.TenantID)
		assert.Equal(t, 3, got.NewViolations)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published summary")
	}
}

func TestNotifierSubscriptionScopedToTenant(t *testing.T) {
	n := setupNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summaries, err := n.Subscribe(ctx, testTenant)
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, Summary{TenantID: "tenant-b", NewViolations: 1}))
	require.NoError(t, n.Publish(ctx, Summary{TenantID: testTenant, NewViolations: 2}))

	select {
	case got := <-summaries:
		assert.Equal(t, testTenant, got.TenantID)
		assert.Equal(t, 2, got.NewViolations)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published summary")
	}
}

func TestNotifierPushAdvancesCheckpoint(t *testing.T) {
	n := setupNotifier(t)
	ctx := context.Background()

	store := graph.NewMemoryStore()
	computer := NewComputer(graph.NewSelector(store))

	// First push only seeds the checkpoint.
	summary, err := n.Push(ctx, computer, testTenant)
	require.NoError(t, err)
	assert.True(t, summary.Empty())

	first, err := n.Checkpoint(ctx, testTenant)
	require.NoError(t, err)
	require.False(t, first.IsZero())

	v := graph.NewViolation(testTenant, "pol-1", "res-1", risk.SeverityCritical)
	v.Timestamp = time.Now().UTC()
	require.NoError(t, store.AddViolation(*v))

	summaries, err := n.Subscribe(ctx, testTenant)
	require.NoError(t, err)

	summary, err = n.Push(ctx, computer, testTenant)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewViolations)

	select {
	case got := <-summaries:
		assert.Equal(t, 1, got.NewViolations)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pushed summary")
	}

	second, err := n.Checkpoint(ctx, testTenant)
	require.NoError(t, err)
	assert.False(t, second.Before(first))
}
