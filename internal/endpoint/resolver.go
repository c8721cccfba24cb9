// Package endpoint resolves the classification service endpoints for the
// current deployment environment.
package endpoint

import (
	"fmt"
	"net"
	"strings"

	"github.com/email-classifier/internal/domain"
)

// Environment is the deployment context an endpoint set is selected for.
type Environment string

const (
	EnvLocal  Environment = "local"
	EnvHosted Environment = "hosted"
)

// ParseEnvironment parses an explicit environment name. Accepts the
// aliases "development" and "production".
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "development", "dev":
		return EnvLocal, nil
	case "hosted", "production", "prod":
		return EnvHosted, nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", domain.ErrInvalidConfig, s)
	}
}

// Detect derives the environment from a hostname. Loopback hosts are local,
// everything else is hosted.
func Detect(hostname string) Environment {
	host := strings.TrimSpace(hostname)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(strings.ToLower(host), "[]")

	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return EnvLocal
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return EnvLocal
	}
	return EnvHosted
}

// Operation is a logical operation of the classification service.
type Operation string

const (
	OpHealth   Operation = "health"
	OpUpload   Operation = "upload"
	OpClassify Operation = "classify"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OpHealth, OpUpload, OpClassify}

// Set maps each operation to an absolute or relative URL.
type Set map[Operation]string

// URL returns the URL for op.
func (s Set) URL(op Operation) string {
	return s[op]
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Profile is the data an environment's endpoint set is built from.
// An empty BaseURL yields relative URLs, routed through an edge proxy.
type Profile struct {
	BaseURL string               `yaml:"base_url"`
	Paths   map[Operation]string `yaml:"paths"`
}

// DefaultPaths are the service paths used when a profile omits one.
var DefaultPaths = map[Operation]string{
	OpHealth:   "/health",
	OpUpload:   "/upload",
	OpClassify: "/classify",
}

// Resolver selects endpoint sets. It holds no mutable state.
type Resolver struct {
	sets map[Environment]Set
}

// NewResolver builds a resolver from a profile per environment. Missing
// environments resolve to relative default paths.
func NewResolver(profiles map[Environment]Profile) *Resolver {
	sets := make(map[Environment]Set, 2)
	for _, env := range []Environment{EnvLocal, EnvHosted} {
		sets[env] = buildSet(profiles[env])
	}
	return &Resolver{sets: sets}
}

// Resolve returns the endpoint set for env. Unknown values resolve as hosted.
func (r *Resolver) Resolve(env Environment) Set {
	set, ok := r.sets[env]
	if !ok {
		set = r.sets[EnvHosted]
	}
	return set.Clone()
}

func buildSet(p Profile) Set {
	base := strings.TrimSuffix(strings.TrimSpace(p.BaseURL), "/")
	set := make(Set, len(Operations))
	for _, op := range Operations {
		path := p.Paths[op]
		if path == "" {
			path = DefaultPaths[op]
		}
		if isAbsolute(path) {
			set[op] = path
			continue
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		set[op] = base + path
	}
	return set
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
