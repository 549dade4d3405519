package accesskey

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Provision converges the credential pair, the generated Secret, the
// rotation schedule and the retention window of rotated-out keys.
func (r *Reconciler) Provision(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.validateSpec,
		r.addCleanupFinalizer,
		r.ensureKeyPolicy,
		r.ensureAccessKey,
		r.rotateIfDue,
		r.sweepRetiredKeys,
		r.updateStatusSuccess,
	}
	for _, subrec := range subrecs {
		result, err := subrec(ctx)
		if subreconciler.ShouldHaltOrRequeue(result, err) {
			return subreconciler.Evaluate(result, err)
		}
	}

	r.deps.Backoff.Reset(r.requeueKey)
	return ctrl.Result{RequeueAfter: r.nextRequeue()}, nil
}

func (r *Reconciler) validateSpec(ctx context.Context) (*ctrl.Result, error) {
	if r.accessKey.Spec.Policy != nil {
		if err := s3client.ValidatePolicyDocument(r.accessKey.Spec.Policy, false); err != nil {
			r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionTrue, consts.ReasonValidationFailed, redact.Error(err))
			r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonValidationFailed, redact.Error(err))
			if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
				return res, uerr
			}
			// terminal until the spec is fixed
			return subreconciler.DoNotRequeue()
		}
	}
	r.setCondition(consts.ConditionPolicyInvalid, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) addCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.AddFinalizer(r.accessKey, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.accessKey); err != nil {
			r.logger.Error(err, "failed to add finalizer to the access key")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

// ensureKeyPolicy maintains an inline policy on the owning user, scoped to
// this key's purpose and named after the AccessKey resource.
func (r *Reconciler) ensureKeyPolicy(ctx context.Context) (*ctrl.Result, error) {
	if r.accessKey.Spec.Policy == nil {
		return subreconciler.ContinueReconciling()
	}

	desired, err := s3client.BuildPolicyJSON(r.accessKey.Spec.Policy)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
	}

	current, err := r.remote.GetUserPolicy(ctx, r.userName, r.accessKey.Name)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
	}

	equal, err := s3client.PoliciesEqual(current, desired)
	if err != nil {
		equal = false
	}
	if !equal {
		if err := r.remote.PutUserPolicy(ctx, r.userName, r.accessKey.Name, desired); err != nil {
			return r.remoteFailure(ctx, consts.ConditionApplyFailed, err)
		}
		r.logger.Info("applied access key policy", "user", r.userName)
	}

	r.setCondition(consts.ConditionApplyFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) ensureAccessKey(ctx context.Context) (*ctrl.Result, error) {
	if !r.accessKey.Status.Created || r.accessKey.Status.AccessKeyID == "" {
		return r.mintAndStore(ctx, "")
	}

	// the Secret holds the only copy of the secret half; if it went away
	// the current key is unrecoverable and must be replaced
	secret := &corev1.Secret{}
	nn := types.NamespacedName{Name: r.credentialsSecretName(), Namespace: r.accessKey.Namespace}
	switch err := r.Get(ctx, nn, secret); {
	case apierrors.IsNotFound(err):
		r.logger.Info("credentials secret is gone, replacing the access key")
		return r.mintAndStore(ctx, r.accessKey.Status.AccessKeyID)
	case err != nil:
		return subreconciler.Requeue()
	}

	if string(secret.Data[consts.DataKeyAccessKeyID]) != r.accessKey.Status.AccessKeyID {
		r.logger.Info("credentials secret does not match the current key, replacing the access key")
		return r.mintAndStore(ctx, r.accessKey.Status.AccessKeyID)
	}
	return subreconciler.ContinueReconciling()
}

// mintAndStore creates a fresh credential pair, writes it into the
// credentials Secret and removes replacedKeyID when set.
func (r *Reconciler) mintAndStore(ctx context.Context, replacedKeyID string) (*ctrl.Result, error) {
	pair, err := r.remote.CreateAccessKey(ctx, r.userName)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionCreationFailed, err)
	}

	if err := r.writeCredentialsSecret(ctx, pair); err != nil {
		r.logger.Error(err, "failed to write credentials secret")
		r.discardMintedKey(ctx, pair.AccessKeyID)
		return subreconciler.Requeue()
	}

	if replacedKeyID != "" && replacedKeyID != pair.AccessKeyID {
		if err := r.remote.DeleteAccessKey(ctx, r.userName, replacedKeyID); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			return r.remoteFailure(ctx, consts.ConditionRotationFailed, err)
		}
	}

	now := metav1.NewTime(r.deps.Clock.Now())
	r.accessKey.Status.AccessKeyID = pair.AccessKeyID
	r.accessKey.Status.Created = true
	r.accessKey.Status.LastRotateTime = &now
	r.accessKey.Status.NextRotateTime = nil
	r.setCondition(consts.ConditionCreationFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.logger.Info("created access key", "user", r.userName, "accessKeyId", pair.AccessKeyID)
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) credentialsSecretName() string {
	return r.accessKey.Name + "-credentials"
}

func (r *Reconciler) writeCredentialsSecret(ctx context.Context, pair *s3client.AccessKeyPair) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      r.credentialsSecretName(),
			Namespace: r.accessKey.Namespace,
		},
	}
	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, secret, func() error {
		if secret.Labels == nil {
			secret.Labels = map[string]string{}
		}
		secret.Labels[consts.LabelManagedBy] = consts.ManagedByValue
		secret.Labels[consts.LabelAccessKeyName] = r.accessKey.Name
		secret.Type = corev1.SecretTypeOpaque
		secret.Data = map[string][]byte{
			consts.DataKeyAccessKeyID:     []byte(pair.AccessKeyID),
			consts.DataKeySecretAccessKey: []byte(pair.SecretAccessKey),
		}
		return controllerutil.SetControllerReference(r.accessKey, secret, r.scheme)
	})
	return err
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
	conditions.ComputeReady(&r.accessKey.Status.Conditions, r.accessKey.Generation)
	return r.updateStatus(ctx)
}
