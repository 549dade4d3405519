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

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Cleanup revokes the current and any retained credential pairs, removes
// their Secrets and releases the finalizer.
func (r *Reconciler) Cleanup(ctx context.Context) (ctrl.Result, error) {
	subrecs := []subreconciler.Fn{
		r.removeRemoteKeys,
		r.removeSecrets,
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

func (r *Reconciler) removeRemoteKeys(ctx context.Context) (*ctrl.Result, error) {
	if r.remote == nil || !r.accessKey.Status.Created {
		// provider is gone or no key was ever created remotely
		return subreconciler.ContinueReconciling()
	}

	// the owning user carries the remote name; when it is already gone its
	// own cleanup revokes any leftover keys
	nn := types.NamespacedName{Name: r.accessKey.Spec.UserRef.Name, Namespace: r.accessKey.Spec.UserRef.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = r.accessKey.Namespace
	}
	user := &s3v1alpha1.User{}
	switch err := r.Get(ctx, nn, user); {
	case apierrors.IsNotFound(err):
		return subreconciler.ContinueReconciling()
	case err != nil:
		return subreconciler.Requeue()
	}
	userName := user.Spec.Name

	keyIDs := []string{r.accessKey.Status.AccessKeyID}
	for _, retired := range r.accessKey.Status.PreviousKeys {
		keyIDs = append(keyIDs, retired.AccessKeyID)
	}
	for _, keyID := range keyIDs {
		if keyID == "" {
			continue
		}
		if err := r.remote.DeleteAccessKey(ctx, userName, keyID); err != nil &&
			!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
			r.logger.Error(err, "failed to revoke access key", "accessKeyId", keyID)
			return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
		}
	}

	if r.accessKey.Spec.Policy != nil {
		if err := r.remote.DeleteUserPolicy(ctx, userName, r.accessKey.Name); err != nil &&
			!errors.Is(err, s3client.ErrNotFound) && !errors.Is(err, s3client.ErrIAMUnsupported) {
			r.logger.Error(err, "failed to delete access key policy")
			return subreconciler.RequeueWithDelay(r.deps.FailureDelay(r.requeueKey, err))
		}
	}
	return subreconciler.ContinueReconciling()
}

// removeSecrets is belt and braces: owned Secrets are garbage collected with
// the AccessKey, but revoked credentials should not outlive it even briefly.
func (r *Reconciler) removeSecrets(ctx context.Context) (*ctrl.Result, error) {
	names := []string{r.credentialsSecretName()}
	for _, retired := range r.accessKey.Status.PreviousKeys {
		names = append(names, retired.SecretName)
	}
	for _, name := range names {
		secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{
			Name: name, Namespace: r.accessKey.Namespace,
		}}
		if err := r.Delete(ctx, secret); err != nil && !apierrors.IsNotFound(err) {
			r.logger.Error(err, "failed to delete credentials secret", "secret", name)
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) removeCleanupFinalizer(ctx context.Context) (*ctrl.Result, error) {
	if objUpdated := controllerutil.RemoveFinalizer(r.accessKey, consts.Finalizer); objUpdated {
		if err := r.Update(ctx, r.accessKey); err != nil {
			r.logger.Error(err, "failed to remove finalizer from the access key")
			return subreconciler.Requeue()
		}
	}
	return subreconciler.ContinueReconciling()
}
