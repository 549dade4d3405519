package bucket

import (
	"context"
	"errors"
	"fmt"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Cleanup tears down the remote bucket according to the deletion policy and
// releases the finalizer only once nothing depends on the bucket anymore.
func (r *Reconciler) Cleanup(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.blockOnDependents,
		r.removeRemoteBucket,
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

// blockOnDependents refuses to delete while foreign BucketPolicies still
// target this bucket. Owned companions are excluded; garbage collection
// removes them alongside the bucket.
func (r *Reconciler) blockOnDependents(ctx context.Context) (*ctrl.Result, error) {
	policies := &s3v1alpha1.BucketPolicyList{}
	if err := r.List(ctx, policies, client.InNamespace(r.bucket.Namespace)); err != nil {
		r.logger.Error(err, "failed to list bucket policies")
		return subreconciler.Requeue()
	}

	var dependents []string
	for i := range policies.Items {
		p := &policies.Items[i]
		if p.Spec.BucketRef.Name != r.bucket.Name {
			continue
		}
		if metav1.IsControlledBy(p, r.bucket) {
			continue
		}
		if p.DeletionTimestamp != nil {
			continue
		}
		dependents = append(dependents, p.Name)
	}

	if len(dependents) == 0 {
		r.setCondition(consts.ConditionDependenciesExist, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
		return subreconciler.ContinueReconciling()
	}

	msg := fmt.Sprintf("deletion blocked by bucket policies: %v", dependents)
	r.logger.Info(msg)
	r.setCondition(consts.ConditionDependenciesExist, metav1.ConditionTrue, consts.ReasonDependencyWait, msg)
	if res, err := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, err) {
		return res, err
	}
	return subreconciler.RequeueWithDelay(common.DependencyRequeue)
}

func (r *Reconciler) removeRemoteBucket(ctx context.Context) (*ctrl.Result, error) {
	if r.bucket.Spec.DeletionPolicy != consts.DeletionPolicyDelete {
		// Retain keeps the remote bucket
		return subreconciler.ContinueReconciling()
	}
	if !r.bucket.Status.Exists {
		return subreconciler.ContinueReconciling()
	}
	if r.remote == nil {
		// provider is gone, there is nothing left to talk to
		return subreconciler.ContinueReconciling()
	}

	name := r.bucket.Status.BucketName
	if name == "" {
		name = r.bucket.Spec.Name
	}

	if r.bucket.Spec.ForceDelete {
		if err := r.remote.EmptyBucket(ctx, name); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			r.logger.Error(err, "failed to empty the bucket")
			return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
		}
	}

	if err := r.remote.DeleteBucket(ctx, name); err != nil && !errors.Is(err, s3client.ErrNotFound) {
		r.logger.Error(err, "failed to remove the bucket")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.RemoveFinalizer(r.bucket, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.bucket); err != nil {
			r.logger.Error(err, "failed to remove finalizer from the bucket")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}
