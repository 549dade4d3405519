package bucketpolicy

import (
	"context"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Provision validates and applies the policy document.
func (r *Reconciler) Provision(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.validatePolicy,
		r.checkConflict,
		r.addCleanupFinalizer,
		r.applyPolicy,
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

func (r *Reconciler) validatePolicy(ctx context.Context) (*ctrl.Result, error) {
	if err := s3client.ValidatePolicyDocument(&r.policy.Spec.Policy, true); err != nil {
		r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionTrue, consts.ReasonValidationFailed, redact.Error(err))
		r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, redact.Error(err))
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		// terminal until the spec is fixed
		return subreconciler.DoNotRequeue()
	}
	r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

// checkConflict refuses to fight over the policy slot of an auto-managed
// bucket: only the bucket's own companion policy may target it.
func (r *Reconciler) checkConflict(ctx context.Context) (*ctrl.Result, error) {
	am := r.bucket.Spec.AutoManage
	if am == nil || !am.Enabled || metav1.IsControlledBy(r.policy, r.bucket) {
		r.setCondition(consts.ConditionPolicyConflict, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
		return subreconciler.ContinueReconciling()
	}

	msg := "bucket has auto-managed access; this policy is not applied"
	r.logger.Info(msg, "bucket", r.bucket.Name)
	r.setCondition(consts.ConditionPolicyConflict, metav1.ConditionTrue, consts.ReasonValidationFailed, msg)
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, msg)
	r.policy.Status.Applied = false
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	// re-check later in case auto-management gets switched off
	return subreconciler.RequeueWithDelay(r.deps.Config.DriftInterval)
}

func (r *Reconciler) addCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.AddFinalizer(r.policy, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.policy); err != nil {
			r.logger.Error(err, "failed to add finalizer to the bucket policy")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) applyPolicy(ctx context.Context) (*ctrl.Result, error) {
	desired, err := s3client.BuildPolicyJSON(&r.policy.Spec.Policy)
	if err != nil {
		return r.applyFailure(ctx, err)
	}

	bucketName := r.bucket.Status.BucketName
	if bucketName == "" {
		bucketName = r.bucket.Spec.Name
	}

	current, err := r.remote.GetBucketPolicy(ctx, bucketName)
	if err != nil {
		return r.applyFailure(ctx, err)
	}

	equal, err := s3client.PoliciesEqual(current, desired)
	if err != nil {
		// unparseable remote policy counts as drift
		equal = false
	}
	if !equal {
		if err := r.remote.PutBucketPolicy(ctx, bucketName, desired); err != nil {
			return r.applyFailure(ctx, err)
		}
		r.logger.Info("applied bucket policy", "bucket", bucketName)
	}

	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.policy.Status.Applied = true
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) applyFailure(ctx context.Context, err error) (*ctrl.Result, error) {
	r.logger.Error(err, "failed to apply bucket policy")
	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionTrue, consts.ReasonRemoteError, redact.Error(err))
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonRemoteError, redact.Error(err))
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
}

func (r *Reconciler) updateStatusSuccess(ctx context.Context) (*ctrl.Result, error) {
	now := metav1.NewTime(r.deps.Clock.Now())
	r.policy.Status.LastSyncTime = &now
	conditions.ComputeReady(&r.policy.Status.Conditions, r.policy.Generation)
	return r.updateStatus(ctx)
}
