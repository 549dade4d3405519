// Package common carries the dependencies and helpers shared by every
// resource reconciler.
package common

import (
	"strings"
	"time"

	genericregistry "k8s.io/apiserver/pkg/registry/generic/registry"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/cloud37-dev/s3-operator/internal/backoff"
	"github.com/cloud37-dev/s3-operator/internal/config"
	"github.com/cloud37-dev/s3-operator/internal/resolver"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
)

// DependencyRequeue is how long a resource waits before re-checking a
// dependency that is not ready yet. Edits to the dependency trigger an
// earlier reconcile through watches.
const DependencyRequeue = 30 * time.Second

// Deps bundles what every reconciler needs beyond the kube client.
type Deps struct {
	Config   *config.Config
	Resolver *resolver.Resolver
	Backoff  *backoff.Tracker
	Clock    clock.Clock
}

func NewDeps(kube client.Client, cfg *config.Config) *Deps {
	clk := clock.RealClock{}
	return &Deps{
		Config:   cfg,
		Resolver: resolver.New(kube, cfg, nil, clk),
		Backoff:  backoff.NewTracker(cfg.Backoff),
		Clock:    clk,
	}
}

// NewTestDeps wires a fixed remote client and clock, for handler tests.
func NewTestDeps(kube client.Client, cfg *config.Config, remote s3client.Client, clk clock.Clock) *Deps {
	factory := func(s3client.Options) (s3client.Client, error) { return remote, nil }
	return &Deps{
		Config:   cfg,
		Resolver: resolver.New(kube, cfg, factory, clk),
		Backoff:  backoff.NewTracker(cfg.Backoff),
		Clock:    clk,
	}
}

// FailureDelay registers a failed attempt for key and returns how long to
// wait before retrying. A throttle hint from the provider wins over the
// computed backoff when it is longer.
func (d *Deps) FailureDelay(key string, err error) time.Duration {
	delay := d.Backoff.Next(key)
	if hint, ok := s3client.RetryAfterHint(err); ok && hint > delay {
		return hint
	}
	return delay
}

// IsOptimisticLock reports whether a status update lost a conflict race and
// should simply be retried.
func IsOptimisticLock(err error) bool {
	return err != nil && strings.Contains(err.Error(), genericregistry.OptimisticLockErrorMsg)
}
