package user

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Cleanup detaches everything hanging off the IAM user, deletes it, and
// releases the finalizer.
func (r *Reconciler) Cleanup(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.removeRemoteUser,
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

func (r *Reconciler) removeRemoteUser(ctx context.Context) (*ctrl.Result, error) {
	if r.remote == nil || !r.user.Status.Created {
		// provider is gone or the user was never created remotely
		return subreconciler.ContinueReconciling()
	}

	name := r.user.Spec.Name

	// identity stores refuse to delete users with dangling access keys or
	// inline policies, so strip those first
	keys, err := r.remote.ListAccessKeys(ctx, name)
	if err != nil && !errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
		r.logger.Error(err, "failed to list access keys of the user")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}
	for _, keyID := range keys {
		if err := r.remote.DeleteAccessKey(ctx, name, keyID); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			r.logger.Error(err, "failed to delete access key of the user", "accessKeyId", keyID)
			return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
		}
	}

	if err := r.remote.DeleteUserPolicy(ctx, name, inlinePolicyName); err != nil &&
		!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
		r.logger.Error(err, "failed to delete inline policy of the user")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}

	if err := r.remote.DeleteUser(ctx, name); err != nil &&
		!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
		r.logger.Error(err, "failed to remove the user")
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.RemoveFinalizer(r.user, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.user); err != nil {
			r.logger.Error(err, "failed to remove finalizer from the user")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}
