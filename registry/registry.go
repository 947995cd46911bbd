// Package registry provides engine instance registration and discovery.
//
// Each running engine instance registers itself in etcd with its role,
// endpoint, and the tenant shards it serves. The API layer discovers
// instances to route tenant queries, and watches for membership changes
// to rebalance. Entries ride on etcd leases with TTL so crashed
// instances disappear from discovery automatically.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Engine instance roles.
const (
	// RoleQuery serves posture and attack path queries.
	RoleQuery = "query"

	// RoleDelta runs the delta push loop.
	RoleDelta = "delta"

	// RoleScanner ingests resource scans into the graph.
	RoleScanner = "scanner"
)

// InstanceInfo describes one registered engine instance. Multiple
// instances of the same role run concurrently, each with a unique
// InstanceID.
type InstanceInfo struct {
	// Role is the instance role: "query", "delta", or "scanner".
	Role string `json:"role"`

	// Version is the engine version the instance runs.
	Version string `json:"version"`

	// InstanceID uniquely identifies this instance (typically a UUID).
	InstanceID string `json:"instance_id"`

	// Endpoint is the network address the instance serves on,
	// "host:port".
	Endpoint string `json:"endpoint"`

	// Shards lists the tenant shards this instance serves. Empty means
	// all tenants.
	Shards []string `json:"shards,omitempty"`

	// Metadata carries instance attributes such as region or capacity
	// hints.
	Metadata map[string]string `json:"metadata,omitempty"`

	// StartedAt is when the instance started.
	StartedAt time.Time `json:"started_at"`
}

// NewInstanceInfo creates an InstanceInfo for the given role and
// endpoint with a generated instance ID and the current start time.
func NewInstanceInfo(role, version, endpoint string) InstanceInfo {
	return InstanceInfo{
		Role:       role,
		Version:    version,
		InstanceID: uuid.New().String(),
		Endpoint:   endpoint,
		StartedAt:  time.Now().UTC(),
	}
}

// ServesTenant reports whether the instance serves the given tenant
// shard. Instances with no shard list serve every tenant.
func (i InstanceInfo) ServesTenant(shard string) bool {
	if len(i.Shards) == 0 {
		return true
	}
	for _, s := range i.Shards {
		if s == shard {
			return true
		}
	}
	return false
}

// Registry is the instance registration and discovery interface.
// Implementations must be safe for concurrent use and must keep
// registered entries alive via periodic lease renewal until Deregister
// or Close.
type Registry interface {
	// Register adds this instance to the registry. The instance is
	// discoverable immediately and stays registered while its lease is
	// renewed. Re-registering the same InstanceID replaces the entry.
	Register(ctx context.Context, info InstanceInfo) error

	// Deregister removes the instance. Unknown instances are a no-op.
	Deregister(ctx context.Context, info InstanceInfo) error

	// Discover returns the currently registered instances of a role, in
	// arbitrary order.
	Discover(ctx context.Context, role string) ([]InstanceInfo, error)

	// DiscoverAll returns every registered instance.
	DiscoverAll(ctx context.Context) ([]InstanceInfo, error)

	// Watch emits the instance list for a role on every membership
	// change, starting with the current state. The channel closes when
	// the context is cancelled or the registry is closed.
	Watch(ctx context.Context, role string) (<-chan []InstanceInfo, error)

	// Close releases resources and stops background keepalives.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints, "host:port".
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix for all engine entries. Entries
	// live under /{namespace}/{role}/{instance-id}. Default
	// "skysentinel".
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. An instance that fails
	// to renew within the TTL drops out of discovery. Default 30.
	TTL int `json:"ttl"`

	// TLS holds TLS configuration for secure etcd communication. Nil
	// disables TLS.
	TLS *TLSConfig `json:"tls,omitempty"`
}

// TLSConfig holds certificate paths for mutual TLS with etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate (PEM).
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key (PEM).
	KeyFile string `json:"key_file"`

	// CAFile is the path to the certificate authority bundle (PEM).
	CAFile string `json:"ca_file"`
}
