package bucketpolicy

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
	testNamespace  = "default"
	testBucketCR   = "demo"
	testBucketName = "demo-bucket"
	testPolicyCR   = "demo-policy"
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
			Endpoint: "https://s3.example.com",
			Region:   "us-east-1",
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

func readyBucket(mutate func(*s3v1alpha1.Bucket)) *s3v1alpha1.Bucket {
	b := &s3v1alpha1.Bucket{
		ObjectMeta: metav1.ObjectMeta{Name: testBucketCR, Namespace: testNamespace},
		Spec: s3v1alpha1.BucketSpec{
			ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
			Name:        testBucketName,
		},
		Status: s3v1alpha1.BucketStatus{
			Exists:     true,
			BucketName: testBucketName,
			Conditions: []metav1.Condition{{
				Type:               consts.ConditionReady,
				Status:             metav1.ConditionTrue,
				Reason:             consts.ReasonReconcileSuccess,
				LastTransitionTime: metav1.Now(),
			}},
		},
	}
	if mutate != nil {
		mutate(b)
	}
	return b
}

func testPolicyDoc() s3v1alpha1.PolicyDocument {
	return s3v1alpha1.PolicyDocument{
		Version: "2012-10-17",
		Statement: []s3v1alpha1.PolicyStatement{{
			SID:       "PublicRead",
			Effect:    "Allow",
			Principal: "*",
			Action:    []string{"s3:GetObject"},
			Resource:  []string{"arn:aws:s3:::" + testBucketName + "/*"},
		}},
	}
}

func newPolicy(mutate func(*s3v1alpha1.BucketPolicy)) *s3v1alpha1.BucketPolicy {
	p := &s3v1alpha1.BucketPolicy{
		ObjectMeta: metav1.ObjectMeta{Name: testPolicyCR, Namespace: testNamespace},
		Spec: s3v1alpha1.BucketPolicySpec{
			BucketRef: s3v1alpha1.ResourceReference{Name: testBucketCR},
			Policy:    testPolicyDoc(),
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
	require.NoError(t, remote.CreateBucket(context.Background(), testBucketName, "us-east-1"))
	remote.ResetCalls()

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

func (f *fixture) getPolicy(t *testing.T) *s3v1alpha1.BucketPolicy {
	t.Helper()
	p := &s3v1alpha1.BucketPolicy{}
	require.NoError(t, f.kube.Get(context.Background(),
		types.NamespacedName{Name: testPolicyCR, Namespace: testNamespace}, p))
	return p
}

func TestAppliesPolicyToBucket(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyBucket(nil), newPolicy(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)

	assert.NotEmpty(t, f.remote.Buckets[testBucketName].Policy)
	got := f.getPolicy(t)
	assert.True(t, got.Status.Applied)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionReady))
	assert.Contains(t, got.Finalizers, consts.Finalizer)
}

func TestEquivalentRemotePolicyIsNotDrift(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyBucket(nil), newPolicy(nil))

	// same policy in a different wire shape: scalar action, principal map
	f.remote.Buckets[testBucketName].Policy = `{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "PublicRead",
			"Effect": "Allow",
			"Principal": {"AWS": "*"},
			"Action": "s3:GetObject",
			"Resource": "arn:aws:s3:::` + testBucketName + `/*"
		}]
	}`

	_, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, f.remote.CallCount("PutBucketPolicy"), "equivalent policies must not be rewritten")
	assert.True(t, f.getPolicy(t).Status.Applied)
}

func TestInvalidPolicyIsTerminal(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyBucket(nil), newPolicy(func(p *s3v1alpha1.BucketPolicy) {
		// bucket policies require a principal
		p.Spec.Policy.Statement[0].Principal = ""
	}))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Zero(t, res.RequeueAfter)
	assert.False(t, res.Requeue)
	assert.Zero(t, f.remote.CallCount("PutBucketPolicy"))

	got := f.getPolicy(t)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionPolicyInvalid))
	ready := conditions.Get(got.Status.Conditions, consts.ConditionReady)
	require.NotNil(t, ready)
	assert.Equal(t, consts.ReasonValidationFailed, ready.Reason)
}

func TestConflictsWithAutoManagedBucket(t *testing.T) {
	bucket := readyBucket(func(b *s3v1alpha1.Bucket) {
		b.Spec.AutoManage = &s3v1alpha1.AutoManageConfig{Enabled: true}
	})
	f := setup(t, readyProvider(), credsSecret(), bucket, newPolicy(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.DriftInterval, res.RequeueAfter)
	assert.Zero(t, f.remote.CallCount("PutBucketPolicy"))

	got := f.getPolicy(t)
	assert.False(t, got.Status.Applied)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionPolicyConflict))
}

func TestGatesOnMissingBucket(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), newPolicy(nil))

	res, err := f.reconcile(t)
	require.NoError(t, err)
	assert.Equal(t, common.DependencyRequeue, res.RequeueAfter)
	assert.Empty(t, f.remote.Calls())

	got := f.getPolicy(t)
	assert.True(t, conditions.IsTrue(got.Status.Conditions, consts.ConditionBucketNotReady))
}

func TestCleanupRemovesRemotePolicy(t *testing.T) {
	f := setup(t, readyProvider(), credsSecret(), readyBucket(nil), newPolicy(nil))

	_, err := f.reconcile(t)
	require.NoError(t, err)
	require.NotEmpty(t, f.remote.Buckets[testBucketName].Policy)

	require.NoError(t, f.kube.Delete(context.Background(), f.getPolicy(t)))
	_, err = f.reconcile(t)
	require.NoError(t, err)

	assert.Empty(t, f.remote.Buckets[testBucketName].Policy)
	err = f.kube.Get(context.Background(),
		types.NamespacedName{Name: testPolicyCR, Namespace: testNamespace}, &s3v1alpha1.BucketPolicy{})
	assert.True(t, apierrors.IsNotFound(err))
}
