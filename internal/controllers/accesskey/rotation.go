package accesskey

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const day = 24 * time.Hour

// rotateIfDue replaces the credential pair once the rotation interval has
// elapsed. The superseded key stays valid for its retention window so
// consumers have time to pick up the new Secret content.
func (r *Reconciler) rotateIfDue(ctx context.Context) (*ctrl.Result, error) {
	interval, enabled := r.rotationInterval()
	if !enabled {
		r.accessKey.Status.NextRotateTime = nil
		return subreconciler.ContinueReconciling()
	}

	last := r.accessKey.Status.LastRotateTime
	if last == nil {
		now := metav1.NewTime(r.deps.Clock.Now())
		r.accessKey.Status.LastRotateTime = &now
		last = &now
	}
	if r.accessKey.Status.NextRotateTime == nil {
		next := metav1.NewTime(last.Add(interval))
		r.accessKey.Status.NextRotateTime = &next
	}

	if r.deps.Clock.Now().Before(r.accessKey.Status.NextRotateTime.Time) {
		return subreconciler.ContinueReconciling()
	}
	return r.rotate(ctx, interval)
}

func (r *Reconciler) rotate(ctx context.Context, interval time.Duration) (*ctrl.Result, error) {
	now := r.deps.Clock.Now()
	oldKeyID := r.accessKey.Status.AccessKeyID

	currentSecret := &corev1.Secret{}
	nn := types.NamespacedName{Name: r.credentialsSecretName(), Namespace: r.accessKey.Namespace}
	if err := r.Get(ctx, nn, currentSecret); err != nil {
		return subreconciler.Requeue()
	}

	pair, err := r.remote.CreateAccessKey(ctx, r.userName)
	if err != nil {
		return r.remoteFailure(ctx, consts.ConditionRotationFailed, err)
	}

	retention := r.retention()
	if retention > 0 {
		// preserve the old credentials before they are overwritten
		prevName, err := r.retirePreviousSecret(ctx, currentSecret, now)
		if err != nil {
			r.logger.Error(err, "failed to create previous-credentials secret")
			r.discardMintedKey(ctx, pair.AccessKeyID)
			return subreconciler.Requeue()
		}
		r.accessKey.Status.PreviousKeys = append(r.accessKey.Status.PreviousKeys, s3v1alpha1.RetiredKey{
			AccessKeyID: oldKeyID,
			SecretName:  prevName,
			RetiredAt:   metav1.NewTime(now),
		})
	} else {
		if err := r.remote.DeleteAccessKey(ctx, r.userName, oldKeyID); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			return r.remoteFailure(ctx, consts.ConditionRotationFailed, err)
		}
	}

	if err := r.writeCredentialsSecret(ctx, pair); err != nil {
		r.logger.Error(err, "failed to write credentials secret")
		r.discardMintedKey(ctx, pair.AccessKeyID)
		return subreconciler.Requeue()
	}

	rotatedAt := metav1.NewTime(now)
	nextRotate := metav1.NewTime(now.Add(interval))
	r.accessKey.Status.AccessKeyID = pair.AccessKeyID
	r.accessKey.Status.LastRotateTime = &rotatedAt
	r.accessKey.Status.NextRotateTime = &nextRotate
	r.setCondition(consts.ConditionRotationFailed, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.logger.Info("rotated access key", "user", r.userName,
		"oldAccessKeyId", oldKeyID, "newAccessKeyId", pair.AccessKeyID)
	return subreconciler.ContinueReconciling()
}

// discardMintedKey revokes a freshly minted key whose ID could not be
// persisted. Leaving it alive would leak an untracked credential and can
// exhaust the per-user key quota on retry.
func (r *Reconciler) discardMintedKey(ctx context.Context, keyID string) {
	if err := r.remote.DeleteAccessKey(ctx, r.userName, keyID); err != nil && !errors.Is(err, s3client.ErrNotFound) {
		r.logger.Error(err, "failed to revoke unpersisted access key", "accessKeyId", keyID)
	}
}

// retirePreviousSecret copies the outgoing credentials into a time-stamped
// Secret that lives until the retention window closes.
func (r *Reconciler) retirePreviousSecret(ctx context.Context, current *corev1.Secret, now time.Time) (string, error) {
	stamp := now.UTC().Format("20060102150405")
	prev := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("%s-previous-%s", r.credentialsSecretName(), stamp),
			Namespace: r.accessKey.Namespace,
			Labels: map[string]string{
				consts.LabelManagedBy:      consts.ManagedByValue,
				consts.LabelAccessKeyName:  r.accessKey.Name,
				consts.LabelPreviousSecret: "true",
				consts.LabelRotatedAt:      stamp,
			},
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{
			consts.DataKeyAccessKeyID:     current.Data[consts.DataKeyAccessKeyID],
			consts.DataKeySecretAccessKey: current.Data[consts.DataKeySecretAccessKey],
		},
	}
	if err := controllerutil.SetControllerReference(r.accessKey, prev, r.scheme); err != nil {
		return "", err
	}
	if err := r.Create(ctx, prev); err != nil && !apierrors.IsAlreadyExists(err) {
		return "", err
	}
	return prev.Name, nil
}

// sweepRetiredKeys deletes rotated-out keys and their Secrets once the
// retention window has passed.
func (r *Reconciler) sweepRetiredKeys(ctx context.Context) (*ctrl.Result, error) {
	if len(r.accessKey.Status.PreviousKeys) == 0 {
		return subreconciler.ContinueReconciling()
	}

	retention := r.retention()
	now := r.deps.Clock.Now()
	previous := r.accessKey.Status.PreviousKeys
	kept := previous[:0]
	for i := range previous {
		retired := previous[i]
		if now.Sub(retired.RetiredAt.Time) < retention {
			kept = append(kept, retired)
			continue
		}

		if err := r.remote.DeleteAccessKey(ctx, r.userName, retired.AccessKeyID); err != nil && !errors.Is(err, s3client.ErrNotFound) {
			// keep the failing key and everything not yet visited
			r.accessKey.Status.PreviousKeys = append(kept, previous[i:]...)
			return r.remoteFailure(ctx, consts.ConditionRotationFailed, err)
		}

		secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{
			Name: retired.SecretName, Namespace: r.accessKey.Namespace,
		}}
		if err := r.Delete(ctx, secret); err != nil && !apierrors.IsNotFound(err) {
			r.logger.Error(err, "failed to delete previous-credentials secret", "secret", retired.SecretName)
			return subreconciler.Requeue()
		}
		r.logger.Info("expired retired access key", "accessKeyId", retired.AccessKeyID)
	}
	r.accessKey.Status.PreviousKeys = kept
	return subreconciler.ContinueReconciling()
}

// nextRequeue picks the earliest of the next rotation, the next retention
// expiry and the drift re-check.
func (r *Reconciler) nextRequeue() time.Duration {
	now := r.deps.Clock.Now()
	wait := r.deps.Config.DriftInterval
	if next := r.accessKey.Status.NextRotateTime; next != nil {
		if d := next.Sub(now); d < wait {
			wait = d
		}
	}
	retention := r.retention()
	for _, retired := range r.accessKey.Status.PreviousKeys {
		if d := retired.RetiredAt.Add(retention).Sub(now); d < wait {
			wait = d
		}
	}
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

func (r *Reconciler) rotationInterval() (time.Duration, bool) {
	rot := r.accessKey.Spec.Rotation
	if rot == nil || !rot.Enabled {
		return 0, false
	}
	days := rot.IntervalDays
	if days <= 0 {
		days = r.deps.Config.Rotation.DefaultIntervalDays
	}
	return time.Duration(days) * day, true
}

func (r *Reconciler) retention() time.Duration {
	rot := r.accessKey.Spec.Rotation
	if rot == nil {
		return time.Duration(r.deps.Config.Rotation.DefaultRetentionDays) * day
	}
	return time.Duration(rot.PreviousKeysRetentionDays) * day
}
