package bucket

import (
	"context"
	"errors"
	"fmt"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Provision converges the remote bucket and its companion resources.
func (r *Reconciler) Provision(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.validateSpec,
		r.addCleanupFinalizer,
		r.ensureBucket,
		r.syncBucketConfig,
		r.ensureAutoManaged,
		r.updateStatusSuccess,
	}
	for _, subrec := range subrecs {
		result, err := subrec(ctx)
		if subreconciler.ShouldHaltOrRequeue(result, err) {
			return subreconciler.Evaluate(result, err)
		}
	}

	r.deps.Backoff.Reset(r.requeueKey)
	return ctrl.Result{RequeueAfter: r.deps.Config.DriftInterval}, nil
}

// validateSpec enforces what the CRD schema cannot: the remote name is
// immutable once the bucket exists.
func (r *Reconciler) validateSpec(ctx context.Context) (*ctrl.Result, error) {
	if r.bucket.Status.BucketName != "" && r.bucket.Spec.Name != r.bucket.Status.BucketName {
		r.setCondition(consts.ConditionReady, metav1.ConditionFalse,
			consts.ReasonValidationFailed, consts.BucketNameImmutableErrMessage)
		if res, err := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, err) {
			return res, err
		}
		// terminal until the spec is fixed; a new generation re-triggers
		return subreconciler.DoNotRequeue()
	}
	return subreconciler.ContinueReconciling()
}

// addCleanupFinalizer runs before any remote mutation so nothing can leak.
func (r *Reconciler) addCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.AddFinalizer(r.bucket, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.bucket); err != nil {
			r.logger.Error(err, "failed to add finalizer to the bucket")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensureBucket(ctx context.Context) (*ctrl.Result, error) {
	name := r.bucket.Spec.Name

	exists, err := r.remote.BucketExists(ctx, name)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionCreationFailed, err)
	}

	if !exists {
		if err := r.remote.CreateBucket(ctx, name, r.region()); err != nil && !errors.Is(err, s3client.ErrAlreadyExists) {
			return r.remoteFailure(ctx, consts.ConditionCreationFailed, err)
		}
		r.logger.Info("created bucket", "bucket", name)
	}

	r.setCondition(consts.ConditionCreationFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.bucket.Status.Exists = true
	r.bucket.Status.BucketName = name
	r.bucket.Status.ARN = "arn:aws:s3:::" + name
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) updateStatusSuccess(ctx context.Context) (*ctrl.Result, error) {
	now := metav1.NewTime(r.deps.Clock.Now())
	r.bucket.Status.LastSyncTime = &now
	conditions.ComputeReady(&r.bucket.Status.Conditions, r.bucket.Generation)
	return r.updateStatus(ctx)
}

func (r *Reconciler) region() string {
	if r.bucket.Spec.Region != "" {
		return r.bucket.Spec.Region
	}
	return r.provider.Spec.Region
}

// remoteFailure publishes the failure on the given condition and requeues
// with backoff.
func (r *Reconciler) remoteFailure(ctx context.Context, condType string, err error) (*ctrl.Result, error) {
	r.logger.Error(err, "remote call failed", "condition", condType)
	r.setCondition(condType, metav1.ConditionTrue, reasonFor(err), redact.Error(err))
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, reasonFor(err), redact.Error(err))
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, s3client.ErrInvalidArgument):
		return consts.ReasonValidationFailed
	default:
		return consts.ReasonRemoteError
	}
}

func companionName(bucket string, suffix string) string {
	return fmt.Sprintf("%s-%s", bucket, suffix)
}
