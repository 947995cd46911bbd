package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// envEndpoints names the environment variable carrying a comma-separated
// etcd endpoint list.
const envEndpoints = "SKYSENTINEL_REGISTRY_ENDPOINTS"

// Client implements Registry against an etcd cluster. It manages leases
// automatically, renewing every TTL/3 to keep registered instances
// visible.
//
// Example usage:
//
//	cfg := registry.Config{
//	    Endpoints: []string{"localhost:2379"},
//	    TTL:       30,
//	}
//	client, err := registry.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// All methods are safe for concurrent use.
type Client struct {
	client    *clientv3.Client
	namespace string
	ttl       int

	mu         sync.RWMutex
	leases     map[string]clientv3.LeaseID
	cancelFns  map[string]context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	closedChan chan struct{}
}

// NewClient creates a registry client and verifies connectivity to the
// etcd cluster. The client must be closed with Close to stop background
// keepalive goroutines.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "skysentinel"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	}
	if cfg.TLS != nil && cfg.TLS.Enabled {
		tlsConfig, err := clientTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		clientCfg.TLS = tlsConfig
	}

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Client{
		client:     cli,
		namespace:  namespace,
		ttl:        ttl,
		leases:     make(map[string]clientv3.LeaseID),
		cancelFns:  make(map[string]context.CancelFunc),
		closedChan: make(chan struct{}),
	}, nil
}

// NewClientFromEnv creates a registry client from the
// SKYSENTINEL_REGISTRY_ENDPOINTS environment variable. An unset variable
// returns (nil, nil): the engine runs fine without registry integration,
// it just isn't discoverable.
func NewClientFromEnv() (*Client, error) {
	endpoints := os.Getenv(envEndpoints)
	if endpoints == "" {
		return nil, nil
	}

	endpointList := strings.Split(endpoints, ",")
	for i, ep := range endpointList {
		endpointList[i] = strings.TrimSpace(ep)
	}

	return NewClient(Config{Endpoints: endpointList})
}

// Register adds this instance to the registry and starts a keepalive
// goroutine renewing its lease every TTL/3 seconds. Re-registering the
// same InstanceID replaces the entry and restarts the keepalive.
func (c *Client) Register(ctx context.Context, info InstanceInfo) error {
	if info.Role == "" || info.InstanceID == "" {
		return fmt.Errorf("instance role and ID are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if cancelFn, exists := c.cancelFns[info.InstanceID]; exists {
		cancelFn()
		delete(c.cancelFns, info.InstanceID)
	}

	leaseResp, err := c.client.Grant(ctx, int64(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal instance info: %w", err)
	}

	key := c.buildKey(info.Role, info.InstanceID)
	if _, err := c.client.Put(ctx, key, string(data), clientv3.WithLease(leaseResp.ID)); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	c.leases[info.InstanceID] = leaseResp.ID

	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancelFns[info.InstanceID] = cancel

	c.wg.Add(1)
	go c.keepalive(keepaliveCtx, leaseResp.ID, info.InstanceID)

	return nil
}

// Deregister removes the instance by revoking its lease and stops its
// keepalive goroutine. Unknown instances are a no-op.
func (c *Client) Deregister(ctx context.Context, info InstanceInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if cancelFn, exists := c.cancelFns[info.InstanceID]; exists {
		cancelFn()
		delete(c.cancelFns, info.InstanceID)
	}

	leaseID, exists := c.leases[info.InstanceID]
	if !exists {
		return nil
	}

	if _, err := c.client.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	delete(c.leases, info.InstanceID)
	return nil
}

// Discover returns the registered instances of a role, in arbitrary
// order.
func (c *Client) Discover(ctx context.Context, role string) ([]InstanceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}
	return c.list(ctx, fmt.Sprintf("/%s/%s/", c.namespace, role))
}

// DiscoverAll returns every registered instance.
func (c *Client) DiscoverAll(ctx context.Context) ([]InstanceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}
	return c.list(ctx, fmt.Sprintf("/%s/", c.namespace))
}

func (c *Client) list(ctx context.Context, prefix string) ([]InstanceInfo, error) {
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover instances: %w", err)
	}

	instances := make([]InstanceInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info InstanceInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			// Skip malformed entries.
			continue
		}
		instances = append(instances, info)
	}
	return instances, nil
}

// Watch returns a channel that receives the role's instance list on
// every membership change. The current state is sent immediately. The
// channel closes when the context is cancelled or the client is closed.
func (c *Client) Watch(ctx context.Context, role string) (<-chan []InstanceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	ch := make(chan []InstanceInfo, 1)

	prefix := fmt.Sprintf("/%s/%s/", c.namespace, role)
	instances, err := c.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ch <- instances

	watchChan := c.client.Watch(ctx, prefix, clientv3.WithPrefix())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.closedChan:
				return
			case watchResp, ok := <-watchChan:
				if !ok {
					return
				}
				if watchResp.Err() != nil {
					return
				}

				instances, err := c.list(context.Background(), prefix)
				if err != nil {
					// Skip this update if the query fails.
					continue
				}

				select {
				case ch <- instances:
				case <-ctx.Done():
					return
				case <-c.closedChan:
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close releases all resources and stops background goroutines. After
// Close, all other methods return errors.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	for _, cancel := range c.cancelFns {
		cancel()
	}
	c.cancelFns = make(map[string]context.CancelFunc)

	close(c.closedChan)
	c.mu.Unlock()

	c.wg.Wait()
	return c.client.Close()
}

// keepalive renews the lease every TTL/3 seconds. It stops when the
// context is cancelled, the client closes, or the lease becomes invalid.
func (c *Client) keepalive(ctx context.Context, leaseID clientv3.LeaseID, instanceID string) {
	defer c.wg.Done()

	interval := time.Duration(c.ttl) * time.Second / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closedChan:
			return
		case <-ticker.C:
			if _, err := c.client.KeepAliveOnce(context.Background(), leaseID); err != nil {
				c.mu.Lock()
				delete(c.leases, instanceID)
				delete(c.cancelFns, instanceID)
				c.mu.Unlock()
				return
			}
		}
	}
}

// buildKey constructs the etcd key for an instance:
// /namespace/role/instance-id.
func (c *Client) buildKey(role, instanceID string) string {
	return fmt.Sprintf("/%s/%s/%s", c.namespace, role, instanceID)
}
