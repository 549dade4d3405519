package accesskey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clocktesting "k8s.io/utils/clock/testing"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/config"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

const (
	testNamespace = "default"
	testKeyCR     = "app-key"
	testUserCR    = "app"
	testUserName  = "app-user"
)

func testScheme(t *testing.T) *runtime.Scheme {
	scheme := runtime.NewScheme()
	require.NoError(t, s3v1alpha1.AddToScheme(scheme))
	require.NoError(t, corev1.AddToScheme(scheme))
	return scheme
}

func readyProvider() *s3v1alpha1.Provider {
	return &s3v1alpha1.Provider{
		ObjectMeta: metav1.ObjectMeta{Name: "wasabi", Namespace: testNamespace},
		Spec: s3v1alpha1.ProviderSpec{
			Endpoint:    "https://s3.example.com",
			IAMEndpoint: "https://iam.example.com",
			Region:      "us-east-1",
			Auth: s3v1alpha1.ProviderAuth{
				AccessKeySecretRef: s3v1alpha1.SecretKeyReference{Name: "creds"},
				SecretKeySecretRef: s3v1alpha1.SecretKeyReference{Name: "creds"},
			},
		},
		Status: s3v1alpha1.ProviderStatus{
			Conditions: []metav1.Condition{{
				Type:               consts.ConditionReady,
				Status:             metav1.ConditionTrue,
				Reason:             consts.ReasonReconcileSuccess,
				LastTransitionTime: metav1.Now(),
			}},
		},
	}
}

func credsSecret() *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "creds", Namespace: testNamespace},
		Data: map[string][]byte{
			consts.DataKeyAccessKeyID:     []byte("AKIAEXAMPLE"),
			consts.DataKeySecretAccessKey: []byte("shhh"),
		},
	}
}

func readyUser() *s3v1alpha1.User {
	return &s3v1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: testUserCR, Namespace: testNamespace},
		Spec: s3v1alpha1.UserSpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Name:        testUserName,
		},
		Status: s3v1alpha1.UserStatus{
			Created: true,
			Conditions: []metav1.Condition{{
				Type:               consts.ConditionReady,
				Status:             metav1.ConditionTrue,
				Reason:             consts.ReasonReconcileSuccess,
				LastTransitionTime: metav1.Now(),
			}},
		},
	}
}

func newAccessKey(mutate func(*s3v1alpha1.AccessKey)) *s3v1alpha1.AccessKey {
	k := &s3v1alpha1.AccessKey{
		ObjectMeta: metav1.ObjectMeta{Name: testKeyCR, Namespace: testNamespace},
		Spec: s3v1alpha1.AccessKeySpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			UserRef:     s3v1alpha1.ResourceReference{Name: testUserCR},
			Rotation: &s3v1alpha1.RotationConfig{
				Enabled:                   true,
				IntervalDays:              1,
				PreviousKeysRetentionDays: 1,
			},
		},
	}
	if mutate != nil {
		mutate(k)
	}
	return k
}

type fixture struct {
	kube   client.Client
	remote *s3client.Fake
	cfg    *config.Config
	clk    *clocktesting.FakeClock
	r      *Reconciler
}

func setup(t *testing.T, objs ...client.Object) *fixture {
	scheme := testScheme(t)
	kube := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()
	remote := s3client.NewFake()
	require.NoError(t, remote.CreateUser(context.Background(), testUserName, nil))
	remote.ResetCalls()

	cfg, err := config.GetConfig("")
	require.NoError(t, err)
	clk := clocktesting.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	return &fixture{
		kube:   kube,
		remote: remote,
		cfg:    cfg,
		clk:    clk,
		r: &Reconciler{
			Client: kube,
			scheme: scheme,
			deps:   common.NewTestDeps(kube, cfg, remote, clk),
		},
	}
}

func (f *fixture) reconcile(t *testing.T) (ctrl.Result, error) {
	t.Helper()
	return f.r.Reconcile(context.Background(), ctrl.Request{
		NamespacedName: types.NamespacedName{Name: testKeyCR, Namespace: testNamespace},
	})
}

func (f *fixture) getKey(t *testing.T) *s3v1alpha1.AccessKey {
	t.Helper()
	k := &s3v1alpha1.AccessKey{}
	require.NoError(t, f.kube.Get(context.Background(),
		types.NamespacedName{Name: testKeyCR, Namespace: testNamespace}, k))
	return k
}

func (f *fixture) getSecret(t *testing.T, name string) *corev1.Secret {
	t.Helper()
	s := &corev1.Secret{}
	require.NoError(t, f.kube.Get(context.Background(),
		types.NamespacedName{Name: name, Namespace: testNamespace}, s))
	return s
}

func TestMintsKeyAndSecret(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	got := f.getKey(t)
	assert.True(t, got.Status.Created)
	assert.NotEmpty(t, got.Status.AccessKeyID)
	assert.Contains(t, got.Finalizers, consts.Finalizer)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionReady))
	require.NotNil(t, got.Status.NextRotateTime)
	assert.True(t, got.Status.NextRotateTime.Time.Equal(f.clk.Now().Add(24*time.Hour)))

	secret := f.getSecret(t, testKeyCR+"-credentials")
	assert.Equal(t, got.Status.AccessKeyID, string(secret.Data[consts.DataKeyAccessKeyID]))
	assert.NotEmpty(t, secret.Data[consts.DataKeySecretAccessKey])
	require.Len(t, secret.OwnerReferences, 1)
	assert.Equal(t, testKeyCR, secret.OwnerReferences[0].Name)

	// converged state must not mint again
	f.remote.ResetCalls()
	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, f.remote.CallCount("CreateAccessKey"))
}

func TestRotatesAndRetainsPreviousKey(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	firstID := f.getKey(t).Status.AccessKeyID

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	got := f.getKey(t)
	assert.NotEqual(t, firstID, got.Status.AccessKeyID)
	require.Len(t, got.Status.PreviousKeys, 1)
	assert.Equal(t, firstID, got.Status.PreviousKeys[0].AccessKeyID)

	// both pairs stay valid through the retention window
	remoteKeys := f.remote.Users[testUserName].AccessKeys
	assert.Contains(t, remoteKeys, firstID)
	assert.Contains(t, remoteKeys, got.Status.AccessKeyID)

	prev := f.getSecret(t, got.Status.PreviousKeys[0].SecretName)
	assert.Equal(t, firstID, string(prev.Data[consts.DataKeyAccessKeyID]))
	assert.Equal(t, "true", prev.Labels[consts.LabelPreviousSecret])

	current := f.getSecret(t, testKeyCR+"-credentials")
	assert.Equal(t, got.Status.AccessKeyID, string(current.Data[consts.DataKeyAccessKeyID]))
}

func TestSweepsExpiredRetiredKeys(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	firstID := f.getKey(t).Status.AccessKeyID

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)
	retiredSecret := f.getKey(t).Status.PreviousKeys[0].SecretName

	// past the first key's retention window; the second rotation also falls due
	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	got := f.getKey(t)
	require.Len(t, got.Status.PreviousKeys, 1)
	assert.NotEqual(t, firstID, got.Status.PreviousKeys[0].AccessKeyID)

	assert.NotContains(t, f.remote.Users[testUserName].AccessKeys, firstID)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: retiredSecret, Namespace: testNamespace}, &corev1.Secret{})
	assert.True(t, apierrors.IsNotFound(err))
}

func retiredIDs(k *s3v1alpha1.AccessKey) []string {
	ids := make([]string, 0, len(k.Status.PreviousKeys))
	for _, rk := range k.Status.PreviousKeys {
		ids = append(ids, rk.AccessKeyID)
	}
	return ids
}

func TestSweepFailureKeepsRemainingRetiredKeys(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(func(k *s3v1alpha1.AccessKey) {
		k.Spec.Rotation.PreviousKeysRetentionDays = 2
	}))

	_, err := f.reconcile(t)
	require.NoError(t, err)

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	got := f.getKey(t)
	require.Len(t, got.Status.PreviousKeys, 2)
	firstRetired := got.Status.PreviousKeys[0].AccessKeyID
	secondRetired := got.Status.PreviousKeys[1].AccessKeyID

	// both retired keys fall out of retention; the first delete fails
	f.clk.SetTime(f.clk.Now().Add(50 * time.Hour))
	f.remote.FailOnce("DeleteAccessKey", s3client.ErrThrottled)
	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.NotZero(t, res.RequeueAfter)

	got = f.getKey(t)
	assert.Contains(t, retiredIDs(got), firstRetired)
	assert.Contains(t, retiredIDs(got), secondRetired, "a failed sweep must not lose track of later retired keys")

	_, err = f.reconcile(t)
	require.NoError(t, err)

	got = f.getKey(t)
	assert.NotContains(t, retiredIDs(got), firstRetired)
	assert.NotContains(t, retiredIDs(got), secondRetired)
	assert.NotContains(t, f.remote.Users[testUserName].AccessKeys, firstRetired)
	assert.NotContains(t, f.remote.Users[testUserName].AccessKeys, secondRetired)
}

func TestRevokesMintedKeyWhenSecretWriteFails(t *testing.T) {
	controller := true
	stolen := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      testKeyCR + "-credentials",
			Namespace: testNamespace,
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion: s3v1alpha1.GroupVersion.String(),
				Kind:       "User",
				Name:       testUserCR,
				UID:        "1234",
				Controller: &controller,
			}},
		},
	}
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil), stolen)

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.True(t, res.Requeue)

	// the pair that could not be persisted must not stay alive remotely
	assert.Equal(t, 1, f.remote.CallCount("CreateAccessKey"))
	assert.Equal(t, 1, f.remote.CallCount("DeleteAccessKey"))
	assert.Empty(t, f.remote.Users[testUserName].AccessKeys)
	assert.False(t, f.getKey(t).Status.Created)
}

func TestDeletesOldKeyWhenRetentionIsZero(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(func(k *s3v1alpha1.AccessKey) {
		k.Spec.Rotation.PreviousKeysRetentionDays = 0
	}))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	firstID := f.getKey(t).Status.AccessKeyID

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	got := f.getKey(t)
	assert.Empty(t, got.Status.PreviousKeys)
	assert.NotContains(t, f.remote.Users[testUserName].AccessKeys, firstID)
	assert.Len(t, f.remote.Users[testUserName].AccessKeys, 1)
}

func TestReplacesKeyWhenSecretIsLost(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	firstID := f.getKey(t).Status.AccessKeyID

	secret := f.getSecret(t, testKeyCR+"-credentials")
	require.NoError(t, f.kube.Delete(context.Background(), secret))

	_, err = f.reconcile(t)
	require.NoError(t, err)

	got := f.getKey(t)
	assert.NotEqual(t, firstID, got.Status.AccessKeyID)
	// the old pair is unrecoverable, so it is revoked immediately
	assert.NotContains(t, f.remote.Users[testUserName].AccessKeys, firstID)
	restored := f.getSecret(t, testKeyCR+"-credentials")
	assert.Equal(t, got.Status.AccessKeyID, string(restored.Data[consts.DataKeyAccessKeyID]))
}

func TestGatesOnMissingUser(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newAccessKey(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, common.DependencyRequeue, res.RequeueAfter)
	assert.Zero(t, f.remote.CallCount("CreateAccessKey"))

	got := f.getKey(t)
	gate := conditions.Get(got.Status.Conditions, consts.ConditionUserNotReady)
	require.NotNil(t, gate)
	assert.Equal(t, metav1.ConditionTrue, gate.Status)
	assert.Equal(t, consts.ReasonDependencyWait, gate.Reason)
}

func TestFinalizerHeldUntilRemoteRevokeSucceeds(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)

	require.NoError(t, f.kube.Delete(context.Background(), f.getKey(t)))
	f.remote.FailOnce("DeleteAccessKey", s3client.ErrThrottled)

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.NotZero(t, res.RequeueAfter)
	assert.Contains(t, f.getKey(t).Finalizers, consts.Finalizer)
	assert.NotEmpty(t, f.remote.Users[testUserName].AccessKeys)

	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.Empty(t, f.remote.Users[testUserName].AccessKeys)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testKeyCR, Namespace: testNamespace}, &s3v1alpha1.AccessKey{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestCleanupRevokesKeysAndSecrets(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyUser(), newAccessKey(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)

	f.clk.SetTime(f.clk.Now().Add(25 * time.Hour))
	_, err = f.reconcile(t)
	require.NoError(t, err)
	got := f.getKey(t)
	require.Len(t, got.Status.PreviousKeys, 1)
	retiredSecret := got.Status.PreviousKeys[0].SecretName

	require.NoError(t, f.kube.Delete(context.Background(), got))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	assert.Empty(t, f.remote.Users[testUserName].AccessKeys)
	for _, name := range []string{testKeyCR + "-credentials", retiredSecret} {
		err = f.kube.Get(context.Background(),
			types.NamespacedName{Name: name, Namespace: testNamespace}, &corev1.Secret{})
		assert.True(t, apierrors.IsNotFound(err), "secret %s must be gone", name)
	}
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testKeyCR, Namespace: testNamespace}, &s3v1alpha1.AccessKey{})
	assert.True(t, apierrors.IsNotFound(err))
}
