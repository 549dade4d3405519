package bucket

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// syncBucketConfig reconciles every declared sub-resource against the
// remote state. One failing sub-resource does not stop the others; the
// failures end up aggregated on the Degraded condition.
func (r *Reconciler) syncBucketConfig(ctx context.Context) (*ctrl.Result, error) {
	type syncFn struct {
		name string
		fn   func(context.Context) error
	}
	syncs := []syncFn{
		{"versioning", r.syncVersioning},
		{"encryption", r.syncEncryption},
		{"publicAccessBlock", r.syncPublicAccessBlock},
		{"tags", r.syncTags},
		{"lifecycle", r.syncLifecycle},
		{"cors", r.syncCORS},
	}

	var failed []string
	var errs []error
	for _, s := range syncs {
		if err := s.fn(ctx); err != nil {
			r.logger.Error(err, "failed to sync bucket sub-resource", "subResource", s.name)
			failed = append(failed, s.name)
			errs = append(errs, err)
		}
	}

	if len(failed) == 0 {
		r.setCondition(consts.ConditionDegraded, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
		return subreconciler.ContinueReconciling()
	}

	err := errors.Join(errs...)
	r.setCondition(consts.ConditionDegraded, metav1.ConditionTrue, consts.ReasonRemoteError,
		"failed sub-resources: "+strings.Join(failed, ", ")+": "+redact.Error(err))
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
}

func (r *Reconciler) syncVersioning(ctx context.Context) error {
	spec := r.bucket.Spec.Versioning
	if spec == nil {
		return nil
	}
	enabled, err := r.remote.GetBucketVersioning(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}
	if enabled == spec.Enabled {
		return nil
	}
	return r.remote.PutBucketVersioning(ctx, r.bucket.Spec.Name, spec.Enabled)
}

func (r *Reconciler) syncEncryption(ctx context.Context) error {
	spec := r.bucket.Spec.Encryption
	if spec == nil {
		return nil
	}
	current, err := r.remote.GetBucketEncryption(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}

	if !spec.Enabled {
		if current == nil {
			return nil
		}
		return r.remote.DeleteBucketEncryption(ctx, r.bucket.Spec.Name)
	}

	desired := s3client.EncryptionState{Algorithm: spec.Algorithm, KMSKeyID: spec.KMSKeyID}
	if desired.Algorithm == "" {
		desired.Algorithm = "AES256"
	}
	if current != nil && *current == desired {
		return nil
	}
	return r.remote.PutBucketEncryption(ctx, r.bucket.Spec.Name, desired)
}

func (r *Reconciler) syncPublicAccessBlock(ctx context.Context) error {
	spec := r.bucket.Spec.PublicAccessBlock
	if spec == nil {
		return nil
	}
	current, err := r.remote.GetPublicAccessBlock(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}
	desired := s3client.PublicAccessBlockState{
		BlockPublicACLs:       spec.BlockPublicACLs,
		IgnorePublicACLs:      spec.IgnorePublicACLs,
		BlockPublicPolicy:     spec.BlockPublicPolicy,
		RestrictPublicBuckets: spec.RestrictPublicBuckets,
	}
	if current != nil && *current == desired {
		return nil
	}
	return r.remote.PutPublicAccessBlock(ctx, r.bucket.Spec.Name, desired)
}

func (r *Reconciler) syncTags(ctx context.Context) error {
	spec := r.bucket.Spec.Tagging
	if spec == nil {
		return nil
	}
	current, err := r.remote.GetBucketTags(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}

	if len(spec.Tags) == 0 {
		if len(current) == 0 {
			return nil
		}
		return r.remote.DeleteBucketTags(ctx, r.bucket.Spec.Name)
	}
	if mapsEqual(current, spec.Tags) {
		return nil
	}
	return r.remote.PutBucketTags(ctx, r.bucket.Spec.Name, spec.Tags)
}

func (r *Reconciler) syncLifecycle(ctx context.Context) error {
	spec := r.bucket.Spec.Lifecycle
	if spec == nil {
		return nil
	}
	current, err := r.remote.GetBucketLifecycle(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}

	desired := lifecycleStates(spec)
	if len(desired) == 0 {
		if len(current) == 0 {
			return nil
		}
		return r.remote.DeleteBucketLifecycle(ctx, r.bucket.Spec.Name)
	}

	sortLifecycle(current)
	sortLifecycle(desired)
	if reflect.DeepEqual(current, desired) {
		return nil
	}
	return r.remote.PutBucketLifecycle(ctx, r.bucket.Spec.Name, desired)
}

func (r *Reconciler) syncCORS(ctx context.Context) error {
	spec := r.bucket.Spec.CORS
	if spec == nil {
		return nil
	}
	current, err := r.remote.GetBucketCORS(ctx, r.bucket.Spec.Name)
	if err != nil {
		return err
	}

	desired := corsStates(spec)
	if len(desired) == 0 {
		if len(current) == 0 {
			return nil
		}
		return r.remote.DeleteBucketCORS(ctx, r.bucket.Spec.Name)
	}

	sortCORS(current)
	sortCORS(desired)
	if reflect.DeepEqual(current, desired) {
		return nil
	}
	return r.remote.PutBucketCORS(ctx, r.bucket.Spec.Name, desired)
}

func lifecycleStates(cfg *s3v1alpha1.LifecycleConfig) []s3client.LifecycleRuleState {
	out := make([]s3client.LifecycleRuleState, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		state := s3client.LifecycleRuleState{
			ID:     rule.ID,
			Prefix: rule.Prefix,
			Status: rule.Status,
		}
		if state.Status == "" {
			state.Status = "Enabled"
		}
		if rule.Expiration != nil {
			state.ExpirationDays = int64(rule.Expiration.Days)
			state.ExpirationDate = rule.Expiration.Date
		}
		for _, t := range rule.Transitions {
			state.Transitions = append(state.Transitions, s3client.LifecycleTransitionState{
				Days:         int64(t.Days),
				StorageClass: t.StorageClass,
			})
		}
		out = append(out, state)
	}
	return out
}

func corsStates(cfg *s3v1alpha1.CORSConfig) []s3client.CORSRuleState {
	out := make([]s3client.CORSRuleState, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		state := s3client.CORSRuleState{
			AllowedOrigins: sortedCopy(rule.AllowedOrigins),
			AllowedMethods: sortedCopy(rule.AllowedMethods),
			AllowedHeaders: sortedCopy(rule.AllowedHeaders),
			ExposedHeaders: sortedCopy(rule.ExposedHeaders),
			MaxAgeSeconds:  int64(rule.MaxAgeSeconds),
		}
		out = append(out, state)
	}
	return out
}

func sortLifecycle(rules []s3client.LifecycleRuleState) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
}

func sortCORS(rules []s3client.CORSRuleState) {
	for i := range rules {
		sort.Strings(rules[i].AllowedOrigins)
		sort.Strings(rules[i].AllowedMethods)
		sort.Strings(rules[i].AllowedHeaders)
		sort.Strings(rules[i].ExposedHeaders)
	}
	sort.Slice(rules, func(i, j int) bool {
		return strings.Join(rules[i].AllowedOrigins, ",") < strings.Join(rules[j].AllowedOrigins, ",")
	})
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
