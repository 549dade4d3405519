package iampolicy

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Cleanup detaches the policy from remaining users, deletes the remote
// managed policy and releases the finalizer.
func (r *Reconciler) Cleanup(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.detachFromUsers,
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

// detachFromUsers is best effort: the identity store refuses to delete a
// policy that is still attached somewhere.
func (r *Reconciler) detachFromUsers(ctx context.Context) (*ctrl.Result, error) {
	if r.remote == nil || r.policy.Status.PolicyARN == "" {
		return subreconciler.ContinueReconciling()
	}

	for _, userName := range r.policy.Status.AttachedUsers {
		user := &s3v1alpha1.User{}
		nn := client.ObjectKey{Name: userName, Namespace: r.policy.Namespace}
		if err := r.Get(ctx, nn, user); err != nil {
			continue
		}
		if err := r.remote.DetachUserPolicy(ctx, user.Spec.Name, r.policy.Status.PolicyARN); err != nil &&
			!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
			r.logger.Error(err, "failed to detach policy from user", "user", user.Spec.Name)
			return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeRemotePolicy(ctx context.Context) (*ctrl.Result, error) {
	if r.remote == nil || r.policy.Status.PolicyARN == "" {
		// provider is gone or the policy was never created remotely
		return subreconciler.ContinueReconciling()
	}

	if err := r.remote.DeleteManagedPolicy(ctx, r.policy.Status.PolicyARN); err != nil &&
		!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
		r.logger.Error(err, "failed to remove the managed policy")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.RemoveFinalizer(r.policy, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.policy); err != nil {
			r.logger.Error(err, "failed to remove finalizer from the iam policy")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}
