package user

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

func inlineDoc() *s3v1alpha1.PolicyDocument {
	return &s3v1alpha1.PolicyDocument{
		Version: "2012-10-17",
		Statement: []s3v1alpha1.PolicyStatement{{
			Effect:   "Allow",
			Action:   []string{"s3:GetObject", "s3:PutObject"},
			Resource: []string{"arn:aws:s3:::demo-bucket/*"},
		}},
	}
}

func newUser(mutate func(*s3v1alpha1.User)) *s3v1alpha1.User {
	u := &s3v1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: testUserCR, Namespace: testNamespace},
		Spec: s3v1alpha1.UserSpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Name:        testUserName,
			Policy:      inlineDoc(),
		},
	}
	if mutate != nil {
		mutate(u)
	}
	return u
}

type fixture struct {
	kube   client.Client
	remote *s3client.Fake
	cfg    *config.Config
	r      *Reconciler
}

func setup(t *testing.T, objs ...client.Object) *fixture {
	scheme := testScheme(t)
	kube := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()
	remote := s3client.NewFake()

	cfg, err := config.GetConfig("")
	require.NoError(t, err)

	return &fixture{
		kube:   kube,
		remote: remote,
		cfg:    cfg,
		r: &Reconciler{
			Client: kube,
			scheme: scheme,
			deps:   common.NewTestDeps(kube, cfg, remote, clocktesting.NewFakeClock(time.Now())),
		},
	}
}

func (f *fixture) reconcile(t *testing.T) (ctrl.Result, error) {
	t.Helper()
	return f.r.Reconcile(context.Background(), ctrl.Request{
		NamespacedName: types.NamespacedName{Name: testUserCR, Namespace: testNamespace},
	})
}

func (f *fixture) getUser(t *testing.T) *s3v1alpha1.User {
	t.Helper()
	u := &s3v1alpha1.User{}
	require.NoError(t, f.kube.Get(context.Background(),
		types.NamespacedName{Name: testUserCR, Namespace: testNamespace}, u))
	return u
}

func TestCreatesUserWithInlinePolicy(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newUser(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	remoteUser, ok := f.remote.Users[testUserName]
	require.True(t, ok, "user must exist remotely")
	assert.NotEmpty(t, remoteUser.InlinePolicies["inline"])

	got := f.getUser(t)
	assert.True(t, got.Status.Created)
	assert.Contains(t, got.Finalizers, consts.Finalizer)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionReady))

	// converged state must not be rewritten
	f.remote.ResetCalls()
	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, f.remote.CallCount("CreateUser"))
	assert.Zero(t, f.remote.CallCount("PutUserPolicy"))
}

func TestBothPolicySourcesIsTerminal(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newUser(func(u *s3v1alpha1.User) {
		u.Spec.PolicyRef = &s3v1alpha1.ResourceReference{Name: "shared"}
	}))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, res.RequeueAfter)
	assert.False(t, res.Requeue)
	assert.Empty(t, f.remote.Calls())

	got := f.getUser(t)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionPolicyInvalid))
	invalid := conditions.Get(got.Status.Conditions, consts.ConditionPolicyInvalid)
	require.NotNil(t, invalid)
	assert.Equal(t, consts.PolicySourceXORErrMessage, invalid.Message)
}

func TestGatesOnUnreadyIAMPolicy(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newUser(func(u *s3v1alpha1.User) {
		u.Spec.Policy = nil
		u.Spec.PolicyRef = &s3v1alpha1.ResourceReference{Name: "shared"}
	}))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, common.DependencyRequeue, res.RequeueAfter)
	assert.Zero(t, f.remote.CallCount("AttachUserPolicy"))

	got := f.getUser(t)
	// the user itself is created before the attachment gate
	assert.True(t, got.Status.Created)
	gate := conditions.Get(got.Status.Conditions, consts.ConditionApplyFailed)
	require.NotNil(t, gate)
	assert.Equal(t, metav1.ConditionTrue, gate.Status)
	assert.Equal(t, consts.ReasonDependencyWait, gate.Reason)
}

func TestAttachesReadyIAMPolicy(t *testing.T) {
	arn := "arn:aws:iam::000000000000:policy/shared"
	iamPolicy := &s3v1alpha1.IAMPolicy{
		ObjectMeta: metav1.ObjectMeta{Name: "shared", Namespace: testNamespace},
		Spec: s3v1alpha1.IAMPolicySpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Policy:      *inlineDoc(),
		},
		Status: s3v1alpha1.IAMPolicyStatus{
			PolicyARN: arn,
			Applied:   true,
			Conditions: []metav1.Condition{{
				Type:               consts.ConditionReady,
				Status:             metav1.ConditionTrue,
				Reason:             consts.ReasonReconcileSuccess,
				LastTransitionTime: metav1.Now(),
			}},
		},
	}
	f := setup(t, readyProvider(), credsSecret(), iamPolicy, newUser(func(u *s3v1alpha1.User) {
		u.Spec.Policy = nil
		u.Spec.PolicyRef = &s3v1alpha1.ResourceReference{Name: "shared"}
	}))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	remoteUser, ok := f.remote.Users[testUserName]
	require.True(t, ok)
	assert.True(t, remoteUser.Attached[arn])
	assert.True(t, conditions.IsTrue(f.getUser(t).Status.Conditions, consts.ConditionReady))
}

func TestCleanupDeletesRemoteUser(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newUser(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	require.Contains(t, f.remote.Users, testUserName)

	require.NoError(t, f.kube.Delete(context.Background(), f.getUser(t)))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	assert.NotContains(t, f.remote.Users, testUserName)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testUserCR, Namespace: testNamespace}, &s3v1alpha1.User{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestFinalizerHeldUntilRemoteDeleteSucceeds(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newUser(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)

	require.NoError(t, f.kube.Delete(context.Background(), f.getUser(t)))
	f.remote.FailOnce("DeleteUser", s3client.ErrThrottled)

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.NotZero(t, res.RequeueAfter)
	assert.Contains(t, f.getUser(t).Finalizers, consts.Finalizer)
	assert.Contains(t, f.remote.Users, testUserName)

	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.NotContains(t, f.remote.Users, testUserName)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testUserCR, Namespace: testNamespace}, &s3v1alpha1.User{})
	assert.True(t, apierrors.IsNotFound(err))
}
