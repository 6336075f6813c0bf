package orchestrator

import (
	"context"
	"time"
)

const (
	// defaultProbeEndpoint is dialed once per session to decide whether
	// externally hosted engines are reachable at all.
	defaultProbeEndpoint = "open.bigmodel.cn:443"

	defaultProbeTimeout = 3 * time.Second

	// availabilityProbeTimeout bounds the per-engine availability check so
	// a slow probe cannot starve a real translation call.
	availabilityProbeTimeout = 5 * time.Second
)

// Session is the immutable configuration snapshot an Orchestrator is
// constructed with. Changing configuration means building a new session;
// nothing re-reads config files mid-call.
type Session struct {
	// PreferredOrder lists engine IDs by priority. Engines registered but
	// not listed go to the back in registration order.
	PreferredOrder []string

	// ProbeEndpoint is the host:port dialed for the network-reachability
	// probe. Empty uses the default.
	ProbeEndpoint string

	// ProbeTimeout bounds the reachability probe. Zero uses the default.
	ProbeTimeout time.Duration

	// Workers bounds concurrent segment translation. Zero sizes the pool
	// to the number of configured engines.
	Workers int
}

func (s Session) probeEndpoint() string {
	if s.ProbeEndpoint == "" {
		return defaultProbeEndpoint
	}
	return s.ProbeEndpoint
}

func (s Session) probeTimeout() time.Duration {
	if s.ProbeTimeout <= 0 {
		return defaultProbeTimeout
	}
	return s.ProbeTimeout
}

// SettingsStore persists the selected engine across sessions. The
// orchestrator treats persistence as an explicit side effect of
// SetActiveEngine, never an implicit write.
type SettingsStore interface {
	ActiveEngine(ctx context.Context) (string, error)
	SaveActiveEngine(ctx context.Context, id string) error
}
