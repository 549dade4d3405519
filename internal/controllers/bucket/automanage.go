package bucket

import (
	"context"

	"github.com/opdev/subreconciler"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// ensureAutoManaged provisions the companion User, BucketPolicy and
// AccessKey for turnkey access to the bucket. The companions are
// owner-referenced, so deleting the Bucket tears them down through garbage
// collection and their own finalizers.
func (r *Reconciler) ensureAutoManaged(ctx context.Context) (*ctrl.Result, error) {
	am := r.bucket.Spec.AutoManage
	if am == nil || !am.Enabled {
		return r.removeAutoManaged(ctx)
	}

	userName := am.UserName
	if userName == "" {
		userName = r.bucket.Spec.Name
	}
	accessLevel := am.AccessLevel
	if accessLevel == "" {
		accessLevel = consts.AccessLevelReadWrite
	}

	user := &s3v1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{
			Name:      companionName(r.bucket.Name, "user"),
			Namespace: r.bucket.Namespace,
		},
	}
	if err := r.createIfAbsent(ctx, user, func() error {
		user.Labels = companionLabels()
		user.Spec.ProviderRef = r.bucket.Spec.ProviderRef
		user.Spec.Name = userName
		return controllerutil.SetControllerReference(r.bucket, user, r.scheme)
	}); err != nil {
		r.logger.Error(err, "failed to ensure companion user")
		return subreconciler.Requeue()
	}

	policy := &s3v1alpha1.BucketPolicy{
		ObjectMeta: metav1.ObjectMeta{
			Name:      companionName(r.bucket.Name, "policy"),
			Namespace: r.bucket.Namespace,
		},
	}
	if err := r.createIfAbsent(ctx, policy, func() error {
		policy.Labels = companionLabels()
		policy.Spec.BucketRef = s3v1alpha1.ResourceReference{Name: r.bucket.Name}
		policy.Spec.Policy = accessPolicyFor(r.bucket.Spec.Name, userName, accessLevel)
		return controllerutil.SetControllerReference(r.bucket, policy, r.scheme)
	}); err != nil {
		r.logger.Error(err, "failed to ensure companion bucket policy")
		return subreconciler.Requeue()
	}

	accessKey := &s3v1alpha1.AccessKey{
		ObjectMeta: metav1.ObjectMeta{
			Name:      companionName(r.bucket.Name, "accesskey"),
			Namespace: r.bucket.Namespace,
		},
	}
	if err := r.createIfAbsent(ctx, accessKey, func() error {
		accessKey.Labels = companionLabels()
		accessKey.Spec.ProviderRef = r.bucket.Spec.ProviderRef
		accessKey.Spec.UserRef = s3v1alpha1.ResourceReference{Name: user.Name}
		accessKey.Spec.Rotation = am.Rotation
		return controllerutil.SetControllerReference(r.bucket, accessKey, r.scheme)
	}); err != nil {
		r.logger.Error(err, "failed to ensure companion access key")
		return subreconciler.Requeue()
	}

	r.bucket.Status.CredentialsSecret = accessKey.Name + "-credentials"
	return subreconciler.ContinueReconciling()
}

// createIfAbsent creates the companion only when it does not exist yet.
// Existing companions are never overwritten; edits made to them stand.
func (r *Reconciler) createIfAbsent(ctx context.Context, obj client.Object, build func() error) error {
	err := r.Get(ctx, client.ObjectKeyFromObject(obj), obj)
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return err
	}
	if err := build(); err != nil {
		return err
	}
	return r.Create(ctx, obj)
}

// removeAutoManaged deletes previously provisioned companions when
// auto-management gets switched off.
func (r *Reconciler) removeAutoManaged(ctx context.Context) (*ctrl.Result, error) {
	companions := []client.Object{
		&s3v1alpha1.AccessKey{ObjectMeta: metav1.ObjectMeta{
			Name: companionName(r.bucket.Name, "accesskey"), Namespace: r.bucket.Namespace}},
		&s3v1alpha1.BucketPolicy{ObjectMeta: metav1.ObjectMeta{
			Name: companionName(r.bucket.Name, "policy"), Namespace: r.bucket.Namespace}},
		&s3v1alpha1.User{ObjectMeta: metav1.ObjectMeta{
			Name: companionName(r.bucket.Name, "user"), Namespace: r.bucket.Namespace}},
	}
	for _, obj := range companions {
		key := client.ObjectKeyFromObject(obj)
		if err := r.Get(ctx, key, obj); err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			return subreconciler.Requeue()
		}
		if !metav1.IsControlledBy(obj, r.bucket) {
			continue
		}
		if err := r.Delete(ctx, obj); err != nil && !apierrors.IsNotFound(err) {
			r.logger.Error(err, "failed to delete companion", "companion", key)
			return subreconciler.Requeue()
		}
	}
	if r.bucket.Status.CredentialsSecret != "" {
		r.bucket.Status.CredentialsSecret = ""
	}
	return subreconciler.ContinueReconciling()
}

func companionLabels() map[string]string {
	return map[string]string{consts.LabelManagedBy: consts.ManagedByValue}
}

// accessPolicyFor grants the companion user the action set of the chosen
// access level on the bucket and its objects.
func accessPolicyFor(bucketName, userName, accessLevel string) s3v1alpha1.PolicyDocument {
	actions := consts.AccessLevelActions[accessLevel]
	return s3v1alpha1.PolicyDocument{
		Version: "2012-10-17",
		Statement: []s3v1alpha1.PolicyStatement{{
			SID:       "AutoManagedAccess",
			Effect:    "Allow",
			Principal: "arn:aws:iam:::user/" + userName,
			Action:    append([]string(nil), actions...),
			Resource: []string{
				"arn:aws:s3:::" + bucketName,
				"arn:aws:s3:::" + bucketName + "/*",
			},
		}},
	}
}
