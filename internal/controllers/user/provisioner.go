package user

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// inlinePolicyName is the fixed name used for the user's inline policy so
// drift checks always look at the same slot.
const inlinePolicyName = "inline"

// Provision converges the IAM user and exactly one policy source.
func (r *Reconciler) Provision(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.validateSpec,
		r.addCleanupFinalizer,
		r.ensureUser,
		r.ensurePolicy,
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

func (r *Reconciler) validateSpec(ctx context.Context) (*ctrl.Result, error) {
	if r.user.Spec.Policy != nil && r.user.Spec.PolicyRef != nil {
		return r.invalidSpec(ctx, consts.PolicySourceXORErrMessage)
	}
	if r.user.Spec.Policy != nil {
		if err := s3client.ValidatePolicyDocument(r.user.Spec.Policy, false); err != nil {
			return r.invalidSpec(ctx, redact.Error(err))
		}
	}
	r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) invalidSpec(ctx context.Context, msg string) (*ctrl.Result, error) {
	r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionTrue, consts.ReasonValidationFailed, msg)
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, msg)
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	// terminal until the spec is fixed
	return subreconciler.DoNotRequeue()
}

func (r *Reconciler) addCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.AddFinalizer(r.user, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.user); err != nil {
			r.logger.Error(err, "failed to add finalizer to the user")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensureUser(ctx context.Context) (*ctrl.Result, error) {
	exists, err := r.remote.UserExists(ctx, r.user.Spec.Name)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionCreationFailed, err)
	}
	if !exists {
		if err := r.remote.CreateUser(ctx, r.user.Spec.Name, r.user.Spec.Tags); err != nil && !errors.Is(err, s3client.ErrAlreadyExists) {
			return r.remoteFailure(ctx, consts.ConditionCreationFailed, err)
		}
		r.logger.Info("created user", "user", r.user.Spec.Name)
	}
	r.setCondition(consts.ConditionCreationFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.user.Status.Created = true
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensurePolicy(ctx context.Context) (*ctrl.Result, error) {
	switch {
	case r.user.Spec.Policy != nil:
		return r.ensureInlinePolicy(ctx)
	case r.user.Spec.PolicyRef != nil:
		return r.ensureAttachedPolicy(ctx)
	default:
		return subreconciler.ContinueReconciling()
	}
}

func (r *Reconciler) ensureInlinePolicy(ctx context.Context) (*ctrl.Result, error) {
	desired, err := s3client.BuildPolicyJSON(r.user.Spec.Policy)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
	}

	current, err := r.remote.GetUserPolicy(ctx, r.user.Spec.Name, inlinePolicyName)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
	}

	equal, err := s3client.PoliciesEqual(current, desired)
	if err != nil {
		equal = false
	}
	if !equal {
		if err := r.remote.PutUserPolicy(ctx, r.user.Spec.Name, inlinePolicyName, desired); err != nil {
			return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
		}
		r.logger.Info("applied inline user policy", "user", r.user.Spec.Name)
	}

	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensureAttachedPolicy(ctx context.Context) (*ctrl.Result, error) {
	nn := types.NamespacedName{Name: r.user.Spec.PolicyRef.Name, Namespace: r.user.Spec.PolicyRef.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = r.user.Namespace
	}

	iamPolicy := &s3v1alpha1.IAMPolicy{}
	if err := r.Get(ctx, nn, iamPolicy); err != nil {
		r.setGate(consts.ConditionApplyFailed, "referenced iam policy does not exist")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}
	if iamPolicy.Status.PolicyARN == "" || !conditions.IsTrue(iamPolicy.Status.Conditions, consts.ConditionReady) {
		r.setGate(consts.ConditionApplyFailed, "referenced iam policy is not ready")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	if err := r.remote.AttachUserPolicy(ctx, r.user.Spec.Name, iamPolicy.Status.PolicyARN); err != nil && !errors.Is(err, s3client.ErrAlreadyExists) {
		return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
	}

	// drop a leftover inline policy from a previous spec shape
	if current, err := r.remote.GetUserPolicy(ctx, r.user.Spec.Name, inlinePolicyName); err == nil && current != "" {
		if err := r.remote.DeleteUserPolicy(ctx, r.user.Spec.Name, inlinePolicyName); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
		}
	}

	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) remoteFailure(ctx context.Context, condType string, err error) (*ctrl.Result, error) {
	if errors.Is(err, s3client.ErrIAMUnsupported) {
		msg := "provider has no iamEndpoint; identity operations are unavailable"
		r.setCondition(condType, metav1.ConditionTrue, consts.ReasonValidationFailed, msg)
		r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, msg)
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(r.deps.Config.DriftInterval)
	}

	r.logger.Error(err, "remote call failed", "condition", condType)
	r.setCondition(condType, metav1.ConditionTrue, consts.ReasonRemoteError, redact.Error(err))
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonRemoteError, redact.Error(err))
	if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
		return res, uerr
	}
	return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
}

func (r *Reconciler) updateStatusSuccess(ctx context.Context) (*ctrl.Result, error) {
	conditions.ComputeReady(&r.user.Status.Conditions, r.user.Generation)
	return r.updateStatus(ctx)
}
