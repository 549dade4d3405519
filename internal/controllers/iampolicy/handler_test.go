package iampolicy

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
	testPolicyCR  = "shared"
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

func policyDoc(actions ...string) s3v1alpha1.PolicyDocument {
	return s3v1alpha1.PolicyDocument{
		Version: "2012-10-17",
		Statement: []s3v1alpha1.PolicyStatement{{
			Effect:   "Allow",
			Action:   actions,
			Resource: []string{"arn:aws:s3:::demo-bucket/*"},
		}},
	}
}

func newIAMPolicy(mutate func(*s3v1alpha1.IAMPolicy)) *s3v1alpha1.IAMPolicy {
	p := &s3v1alpha1.IAMPolicy{
		ObjectMeta: metav1.ObjectMeta{Name: testPolicyCR, Namespace: testNamespace},
		Spec: s3v1alpha1.IAMPolicySpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Policy:      policyDoc("s3:GetObject"),
			Description: "shared read access",
		},
	}
	if mutate != nil {
		mutate(p)
	}
	return p
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
		NamespacedName: types.NamespacedName{Name: testPolicyCR, Namespace: testNamespace},
	})
}

func (f *fixture) getPolicy(t *testing.T) *s3v1alpha1.IAMPolicy {
	t.Helper()
	p := &s3v1alpha1.IAMPolicy{}
	require.NoError(t, f.kube.Get(context.Background(),
		types.NamespacedName{Name: testPolicyCR, Namespace: testNamespace}, p))
	return p
}

func TestCreatesManagedPolicy(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newIAMPolicy(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	got := f.getPolicy(t)
	assert.Equal(t, "arn:aws:iam::000000000000:policy/"+testPolicyCR, got.Status.PolicyARN)
	assert.True(t, got.Status.Applied)
	assert.NotNil(t, got.Status.LastSyncTime)
	assert.Contains(t, got.Finalizers, consts.Finalizer)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionReady))

	// converged state must not be rewritten
	f.remote.ResetCalls()
	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, f.remote.CallCount("CreateManagedPolicy"))
	assert.Zero(t, f.remote.CallCount("UpdateManagedPolicy"))
}

func TestUpdatesDriftedDocument(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newIAMPolicy(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)

	got := f.getPolicy(t)
	got.Spec.Policy = policyDoc("s3:GetObject", "s3:PutObject")
	require.NoError(t, f.kube.Update(context.Background(), got))

	f.remote.ResetCalls()
	_, err = f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, 1, f.remote.CallCount("UpdateManagedPolicy"))

	remote, err := f.remote.GetManagedPolicy(context.Background(), testPolicyCR)
	require.NoError(t, err)
	assert.Contains(t, remote.Document, "s3:PutObject")
}

func TestRecordsReferencingUsers(t *testing.T) {
	userFor := func(name string) *s3v1alpha1.User {
		return &s3v1alpha1.User{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace},
			Spec: s3v1alpha1.UserSpec{
				ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
				Name:        name + "-user",
				PolicyRef:   &s3v1alpha1.ResourceReference{Name: testPolicyCR},
			},
		}
	}
	other := &s3v1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: "loner", Namespace: testNamespace},
		Spec: s3v1alpha1.UserSpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Name:        "loner-user",
		},
	}
	f := setup(t, readyProvider(), credsSecret(), newIAMPolicy(nil),
		userFor("zeta"), userFor("alpha"), other)

	_, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, f.getPolicy(t).Status.AttachedUsers)
}

func TestIAMUnsupportedProvider(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newIAMPolicy(nil))
	f.remote.IAMDisabled = true

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	got := f.getPolicy(t)
	assert.False(t, got.Status.Applied)
	failed := conditions.Get(got.Status.Conditions, consts.ConditionApplyFailed)
	require.NotNil(t, failed)
	assert.Equal(t, metav1.ConditionTrue, failed.Status)
	assert.Equal(t, consts.ReasonValidationFailed, failed.Reason)
}

func TestCleanupDetachesAndDeletes(t *testing.T) {
	user := &s3v1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: "app", Namespace: testNamespace},
		Spec: s3v1alpha1.UserSpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Name:        testUserName,
			PolicyRef:   &s3v1alpha1.ResourceReference{Name: testPolicyCR},
		},
	}
	f := setup(t, readyProvider(), credsSecret(), newIAMPolicy(nil), user)
	require.NoError(t, f.remote.CreateUser(context.Background(), testUserName, nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	got := f.getPolicy(t)
	arn := got.Status.PolicyARN
	require.NotEmpty(t, arn)
	require.NoError(t, f.remote.AttachUserPolicy(context.Background(), testUserName, arn))

	require.NoError(t, f.kube.Delete(context.Background(), got))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	assert.False(t, f.remote.Users[testUserName].Attached[arn])
	_, err = f.remote.GetManagedPolicy(context.Background(), testPolicyCR)
	assert.ErrorIs(t, err, s3client.ErrNotFound)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testPolicyCR, Namespace: testNamespace}, &s3v1alpha1.IAMPolicy{})
	assert.True(t, apierrors.IsNotFound(err))
}
