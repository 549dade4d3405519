package iampolicy

import (
	"context"
	"errors"
	"sort"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Provision converges the remote managed policy and its advisory user list.
func (r *Reconciler) Provision(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.validatePolicy,
		r.addCleanupFinalizer,
		r.ensureManagedPolicy,
		r.updateAttachedUsers,
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
	if err := s3client.ValidatePolicyDocument(&r.policy.Spec.Policy, false); err != nil {
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

func (r *Reconciler) addCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.AddFinalizer(r.policy, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.policy); err != nil {
			r.logger.Error(err, "failed to add finalizer to the iam policy")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensureManagedPolicy(ctx context.Context) (*ctrl.Result, error) {
	desired, err := s3client.BuildPolicyJSON(&r.policy.Spec.Policy)
	if err != nil {
		return r.applyFailure(ctx, err)
	}

	existing, err := r.remote.GetManagedPolicy(ctx, r.policy.Name)
	switch {
	case errors.Is(err, s3client.ErrNotFound):
		arn, cerr := r.remote.CreateManagedPolicy(ctx, r.policy.Name, r.policy.Spec.Description, desired, r.policy.Spec.Tags)
		if cerr != nil {
			return r.applyFailure(ctx, cerr)
		}
		r.logger.Info("created managed policy", "policy", r.policy.Name, "arn", arn)
		r.policy.Status.PolicyARN = arn
	case err != nil:
		return r.applyFailure(ctx, err)
	default:
		r.policy.Status.PolicyARN = existing.ARN
		equal, perr := s3client.PoliciesEqual(existing.Document, desired)
		if perr != nil {
			// unparseable remote document counts as drift
			equal = false
		}
		if !equal {
			if err := r.remote.UpdateManagedPolicy(ctx, existing.ARN, desired); err != nil {
				return r.applyFailure(ctx, err)
			}
			r.logger.Info("updated managed policy", "policy", r.policy.Name)
		}
	}

	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.policy.Status.Applied = true
	return subreconciler.ContinueReconciling()
}

// updateAttachedUsers records which User resources currently reference this
// policy. The list is advisory; attachment itself is driven by the user
// controller.
func (r *Reconciler) updateAttachedUsers(ctx context.Context) (*ctrl.Result, error) {
	users := &s3v1alpha1.UserList{}
	if err := r.List(ctx, users, client.InNamespace(r.policy.Namespace)); err != nil {
		r.logger.Error(err, "failed to list users referencing the policy")
		return subreconciler.Requeue()
	}

	var attached []string
	for i := range users.Items {
		ref := users.Items[i].Spec.PolicyRef
		if ref == nil || ref.Name != r.policy.Name {
			continue
		}
		if ref.Namespace != "" && ref.Namespace != r.policy.Namespace {
			continue
		}
		attached = append(attached, users.Items[i].Name)
	}
	sort.Strings(attached)
	r.policy.Status.AttachedUsers = attached
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) applyFailure(ctx context.Context, err error) (*ctrl.Result, error) {
	if errors.Is(err, s3client.ErrIAMUnsupported) {
		msg := "provider has no iamEndpoint; identity operations are unavailable"
		r.setCondition(consts.ConditionApplyFailed, metav1.ConditionTrue, consts.ReasonValidationFailed, msg)
		r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, msg)
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(r.deps.Config.DriftInterval)
	}

	r.logger.Error(err, "failed to apply managed policy")
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
