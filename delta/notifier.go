package delta

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures the Redis connection backing a Notifier.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection
	// establishment.
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	WriteTimeout time.Duration
}

// Notifier pushes delta summaries over Redis pub/sub and persists each
// tenant's polling checkpoint. One notifier serves many tenants; channel
// and checkpoint keys are tenant-scoped.
type Notifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger.
func WithNotifierLogger(logger *zap.Logger) NotifierOption {
	return func(n *Notifier) { n.logger = logger }
}

// NewNotifier creates a Notifier connected to Redis with the given
// options.
func NewNotifier(opts RedisOptions, nopts ...NotifierOption) (*Notifier, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := &Notifier{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range nopts {
		opt(n)
	}
	return n, nil
}

func channelKey(tenantID string) string {
	return "posture:delta:" + tenantID
}

func checkpointKey(tenantID string) string {
	return "posture:delta:" + tenantID + ":checkpoint"
}

// Publish sends a summary to the tenant's delta channel.
func (n *Notifier) Publish(ctx context.Context, summary Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal delta summary: %w", err)
	}
	if err := n.client.Publish(ctx, channelKey(summary.TenantID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish delta for tenant %s: %w", summary.TenantID, err)
	}
	return nil
}

// Subscribe creates a subscription to a tenant's delta channel. The
// returned channel receives summaries until the context is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, tenantID string) (<-chan Summary, error) {
	pubsub := n.client.Subscribe(ctx, channelKey(tenantID))

	// Wait for subscription confirmation.
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to deltas for tenant %s: %w", tenantID, err)
	}

	summaries := make(chan Summary)
	go func() {
		defer close(summaries)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var summary Summary
				if err := json.Unmarshal([]byte(msg.Payload), &summary); err != nil {
					n.logger.Warn("dropping malformed delta payload",
						zap.String("tenant_id", tenantID),
						zap.Error(err))
					continue
				}
				select {
				case summaries <- summary:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return summaries, nil
}

// SetCheckpoint persists the tenant's polling checkpoint.
func (n *Notifier) SetCheckpoint(ctx context.Context, tenantID string, at time.Time) error {
	value := at.UTC().Format(time.RFC3339Nano)
	if err := n.client.Set(ctx, checkpointKey(tenantID), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint for tenant %s: %w", tenantID, err)
	}
	return nil
}

// Checkpoint returns the tenant's polling checkpoint. A tenant that has
// never checkpointed gets the zero time.
func (n *Notifier) Checkpoint(ctx context.Context, tenantID string) (time.Time, error) {
	value, err := n.client.Get(ctx, checkpointKey(tenantID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read checkpoint for tenant %s: %w", tenantID, err)
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed checkpoint for tenant %s: %w", tenantID, err)
	}
	return at, nil
}

// Push computes the tenant's delta since its stored checkpoint, publishes
// it when non-empty, and advances the checkpoint. A tenant without a
// checkpoint gets one set to now and no publication.
func (n *Notifier) Push(ctx context.Context, computer *Computer, tenantID string) (Summary, error) {
	now := time.Now().UTC()
	since, err := n.Checkpoint(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	if since.IsZero() {
		return Summary{TenantID: tenantID, Since: now}, n.SetCheckpoint(ctx, tenantID, now)
	}

	summary, err := computer.Since(ctx, tenantID, since)
	if err != nil {
		return Summary{}, err
	}
	if !summary.Empty() {
		if err := n.Publish(ctx, summary); err != nil {
			return Summary{}, err
		}
	}
	if err := n.SetCheckpoint(ctx, tenantID, now); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Close closes the Redis connection.
func (n *Notifier) Close() error {
	return n.client.Close()
}
