package bucketpolicy

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/resolver"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Cleanup removes the remote policy before releasing the finalizer. When
// the bucket or provider is already gone there is nothing left to clean.
func (r *Reconciler) Cleanup(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.removeRemotePolicy,
		r.removeCleanupFinalizer,
	}
	for _, subrec := range subrecs {
		result, err := subrec(ctx)
		if subreconciler.ShouldHaltOrRequeue(result, err) {
			return subreconciler.Evaluate(result, err)
		}
	}

	r.deps.Backoff.Reset(r.requeueKey)
	return subreconciler.Evaluate(subreconciler.DoNotRequeue())
}

func (r *Reconciler) removeRemotePolicy(ctx context.Context) (*ctrl.Result, error) {
	if !r.policy.Status.Applied {
		return subreconciler.ContinueReconciling()
	}

	nn := types.NamespacedName{Name: r.policy.Spec.BucketRef.Name, Namespace: r.policy.Spec.BucketRef.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = r.policy.Namespace
	}
	bucket := &s3v1alpha1.Bucket{}
	switch err := r.Get(ctx, nn, bucket); {
	case apierrors.IsNotFound(err):
		// bucket gone, the policy went with it
		return subreconciler.ContinueReconciling()
	case err != nil:
		return subreconciler.Requeue()
	}

	remote, _, err := r.deps.Resolver.Resolve(ctx, bucket.Spec.ProviderRef, bucket.Namespace)
	if err != nil {
		var nre *resolver.NotReadyError
		if errors.Is(err, resolver.ErrProviderNotFound) || errors.As(err, &nre) {
			// nothing to talk to anymore
			return subreconciler.ContinueReconciling()
		}
		return subreconciler.RequeueWithError(err)
	}

	bucketName := bucket.Status.BucketName
	if bucketName == "" {
		bucketName = bucket.Spec.Name
	}
	if err := remote.DeleteBucketPolicy(ctx, bucketName); err != nil && !errors.Is(err, s3client.ErrNotFound) {
		r.logger.Error(err, "failed to remove the bucket policy")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.RemoveFinalizer(r.policy, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.policy); err != nil {
			r.logger.Error(err, "failed to remove finalizer from the bucket policy")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}
