// Package resolver turns Provider references into ready-to-use remote
// clients. Resolved clients are cached for a short TTL so that bursts of
// reconciles against the same provider do not re-read credential secrets on
// every pass.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	"k8s.io/utils/pointer"
	"sigs.k8s.io/controller-runtime/pkg/client"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/config"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// ErrProviderNotFound gates reconciles of resources whose Provider does not
// exist yet.
var ErrProviderNotFound = errors.New("provider not found")

// NotReadyError reports a Provider that exists but cannot serve yet.
type NotReadyError struct {
	Reason  string
	Message string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("provider not ready: %s: %s", e.Reason, e.Message)
}

// Factory builds a remote client from resolved options. Swapped for a fake
// in tests.
type Factory func(opts s3client.Options) (s3client.Client, error)

type cacheEntry struct {
	client     s3client.Client
	provider   *s3v1alpha1.Provider
	generation int64
	expires    time.Time
}

type Resolver struct {
	kube          client.Client
	factory       Factory
	cacheTTL      time.Duration
	kubeLimiter   *rate.Limiter
	remoteLimiter *rate.Limiter
	clock         clock.PassiveClock

	mu    sync.Mutex
	cache map[types.NamespacedName]cacheEntry
}

func New(kube client.Client, cfg *config.Config, factory Factory, clk clock.PassiveClock) *Resolver {
	if factory == nil {
		factory = s3client.New
	}
	return &Resolver{
		kube:          kube,
		factory:       factory,
		cacheTTL:      cfg.Resolver.CacheTTL,
		kubeLimiter:   rate.NewLimiter(rate.Limit(cfg.RateLimits.Kube), int(cfg.RateLimits.Kube)),
		remoteLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimits.Remote), int(cfg.RateLimits.Remote)),
		clock:         clk,
		cache:         map[types.NamespacedName]cacheEntry{},
	}
}

// Resolve returns a remote client and the Provider object for the given
// reference. The reference namespace defaults to defaultNamespace.
func (r *Resolver) Resolve(ctx context.Context, ref s3v1alpha1.ResourceReference, defaultNamespace string) (s3client.Client, *s3v1alpha1.Provider, error) {
	nn := types.NamespacedName{Name: ref.Name, Namespace: ref.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = defaultNamespace
	}

	provider := &s3v1alpha1.Provider{}
	if err := r.kubeLimiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	if err := r.kube.Get(ctx, nn, provider); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrProviderNotFound, nn)
		}
		return nil, nil, err
	}

	if !provider.DeletionTimestamp.IsZero() {
		return nil, provider, &NotReadyError{
			Reason:  consts.ReasonDependencyWait,
			Message: "provider is being deleted",
		}
	}

	c, err := r.clientFor(ctx, provider, nn)
	if err != nil {
		return nil, provider, err
	}
	return c, provider, nil
}

// Invalidate drops any cached client for the provider, forcing the next
// Resolve to re-read credentials.
func (r *Resolver) Invalidate(nn types.NamespacedName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, nn)
}

func (r *Resolver) clientFor(ctx context.Context, provider *s3v1alpha1.Provider, nn types.NamespacedName) (s3client.Client, error) {
	now := r.clock.Now()

	r.mu.Lock()
	entry, ok := r.cache[nn]
	r.mu.Unlock()
	if ok && entry.generation == provider.Generation && now.Before(entry.expires) {
		return entry.client, nil
	}

	opts, err := r.optionsFor(ctx, provider)
	if err != nil {
		return nil, err
	}
	c, err := r.factory(*opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[nn] = cacheEntry{
		client:     c,
		provider:   provider,
		generation: provider.Generation,
		expires:    now.Add(r.cacheTTL),
	}
	r.mu.Unlock()
	return c, nil
}

func (r *Resolver) optionsFor(ctx context.Context, provider *s3v1alpha1.Provider) (*s3client.Options, error) {
	auth := provider.Spec.Auth
	accessKey, err := r.secretValue(ctx, provider.Namespace, auth.AccessKeySecretRef, consts.DataKeyAccessKeyID)
	if err != nil {
		return nil, err
	}
	secretKey, err := r.secretValue(ctx, provider.Namespace, auth.SecretKeySecretRef, consts.DataKeySecretAccessKey)
	if err != nil {
		return nil, err
	}

	opts := &s3client.Options{
		Endpoint:    provider.Spec.Endpoint,
		IAMEndpoint: provider.Spec.IAMEndpoint,
		Region:      provider.Spec.Region,
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		PathStyle:   pointer.BoolDeref(provider.Spec.PathStyle, true),
		Limiter:     r.remoteLimiter,
	}
	if auth.SessionTokenSecretRef != nil {
		token, err := r.secretValue(ctx, provider.Namespace, *auth.SessionTokenSecretRef, "session-token")
		if err != nil {
			return nil, err
		}
		opts.SessionToken = token
	}
	if tls := provider.Spec.TLS; tls != nil {
		opts.InsecureSkipVerify = tls.InsecureSkipVerify
		if tls.CACertSecretRef != nil {
			pem, err := r.secretValue(ctx, provider.Namespace, *tls.CACertSecretRef, "ca.crt")
			if err != nil {
				return nil, err
			}
			opts.CACertPEM = []byte(pem)
		}
	}
	if rp := provider.Spec.RetryPolicy; rp != nil {
		opts.MaxRetries = int(rp.MaxAttempts)
	}
	return opts, nil
}

func (r *Resolver) secretValue(ctx context.Context, namespace string, ref s3v1alpha1.SecretKeyReference, defaultKey string) (string, error) {
	if err := r.kubeLimiter.Wait(ctx); err != nil {
		return "", err
	}
	secret := &corev1.Secret{}
	nn := types.NamespacedName{Name: ref.Name, Namespace: namespace}
	if err := r.kube.Get(ctx, nn, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return "", &NotReadyError{
				Reason:  consts.ReasonDependencyWait,
				Message: fmt.Sprintf("credentials secret %s not found", nn),
			}
		}
		return "", err
	}

	key := ref.Key
	if key == "" {
		key = defaultKey
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", &NotReadyError{
			Reason:  consts.ReasonValidationFailed,
			Message: fmt.Sprintf("secret %s has no key %q", nn, key),
		}
	}
	return string(value), nil
}
