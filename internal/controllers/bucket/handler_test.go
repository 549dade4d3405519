package bucket

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
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

var _ = Describe("Bucket controller", func() {
	const (
		namespace  = "default"
		bucketCR   = "demo"
		bucketName = "demo-bucket"
	)

	var (
		ctx    context.Context
		kube   client.Client
		remote *s3client.Fake
		cfg    *config.Config
		r      *Reconciler
	)

	newScheme := func() *runtime.Scheme {
		scheme := runtime.NewScheme()
		Expect(s3v1alpha1.AddToScheme(scheme)).To(Succeed())
		Expect(corev1.AddToScheme(scheme)).To(Succeed())
		return scheme
	}

	readyProvider := func() *s3v1alpha1.Provider {
		return &s3v1alpha1.Provider{
			ObjectMeta: metav1.ObjectMeta{Name: "wasabi", Namespace: namespace},
			Spec: s3v1alpha1.ProviderSpec{
				Type:     s3v1alpha1.ProviderTypeWasabi,
				Endpoint: "https://s3.example.com",
				Region:   "us-east-1",
				Auth: s3v1alpha1.ProviderAuth{
					AccessKeySecretRef: s3v1alpha1.SecretKeyReference{Name: "creds"},
					SecretKeySecretRef: s3v1alpha1.SecretKeyReference{Name: "creds"},
				},
			},
			Status: s3v1alpha1.ProviderStatus{
				Connected: true,
				Conditions: []metav1.Condition{{
					Type:               consts.ConditionReady,
					Status:             metav1.ConditionTrue,
					Reason:             consts.ReasonReconcileSuccess,
					LastTransitionTime: metav1.Now(),
				}},
			},
		}
	}

	credsSecret := func() *corev1.Secret {
		return &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "creds", Namespace: namespace},
			Data: map[string][]byte{
				consts.DataKeyAccessKeyID:     []byte("AKIAEXAMPLE"),
				consts.DataKeySecretAccessKey: []byte("shhh"),
			},
		}
	}

	newBucket := func(mutate func(*s3v1alpha1.Bucket)) *s3v1alpha1.Bucket {
		b := &s3v1alpha1.Bucket{
			ObjectMeta: metav1.ObjectMeta{Name: bucketCR, Namespace: namespace},
			Spec: s3v1alpha1.BucketSpec{
				ProviderRef: s3v1alpha1.ResourceReference{Name: "wasabi"},
				Name:        bucketName,
			},
		}
		if mutate != nil {
			mutate(b)
		}
		return b
	}

	setup := func(objs ...client.Object) {
		ctx = context.Background()
		scheme := newScheme()
		kube = fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()
		remote = s3client.NewFake()
		clk := clocktesting.NewFakeClock(time.Now())

		var err error
		cfg, err = config.GetConfig("")
		Expect(err).NotTo(HaveOccurred())

		r = &Reconciler{
			Client: kube,
			scheme: scheme,
			deps:   common.NewTestDeps(kube, cfg, remote, clk),
		}
	}

	reconcile := func() (ctrl.Result, error) {
		return r.Reconcile(ctx, ctrl.Request{
			NamespacedName: types.NamespacedName{Name: bucketCR, Namespace: namespace},
		})
	}

	getBucket := func() *s3v1alpha1.Bucket {
		b := &s3v1alpha1.Bucket{}
		Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR, Namespace: namespace}, b)).To(Succeed())
		return b
	}

	Context("When provisioning a bucket", func() {
		It("Should create the remote bucket and apply the declared configuration", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.Versioning = &s3v1alpha1.VersioningConfig{Enabled: true}
				b.Spec.Tagging = &s3v1alpha1.TaggingConfig{Tags: map[string]string{"team": "data"}}
			}))

			res, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RequeueAfter).To(Equal(cfg.DriftInterval))

			Expect(remote.Buckets).To(HaveKey(bucketName))
			Expect(remote.Buckets[bucketName].Versioning).To(BeTrue())
			Expect(remote.Buckets[bucketName].Tags).To(Equal(map[string]string{"team": "data"}))

			got := getBucket()
			Expect(got.Finalizers).To(ContainElement(consts.Finalizer))
			Expect(got.Status.Exists).To(BeTrue())
			Expect(got.Status.BucketName).To(Equal(bucketName))
			Expect(got.Status.ARN).To(Equal("arn:aws:s3:::" + bucketName))
			Expect(conditions.IsTrue(got.Status.Conditions, consts.ConditionReady)).To(BeTrue())
		})

		It("Should make no mutating remote calls once converged", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.Versioning = &s3v1alpha1.VersioningConfig{Enabled: true}
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			remote.ResetCalls()
			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(remote.CallCount("CreateBucket")).To(BeZero())
			Expect(remote.CallCount("PutBucketVersioning")).To(BeZero())
			Expect(remote.CallCount("PutBucketTags")).To(BeZero())
		})

		It("Should correct remote tag drift", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.Tagging = &s3v1alpha1.TaggingConfig{Tags: map[string]string{"team": "data"}}
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			remote.Buckets[bucketName].Tags = map[string]string{"team": "data", "stray": "true"}
			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(remote.Buckets[bucketName].Tags).To(Equal(map[string]string{"team": "data"}))
		})

		It("Should gate on a provider that is not ready without touching the remote", func() {
			provider := readyProvider()
			provider.Status.Conditions = nil
			setup(provider, credsSecret(), newBucket(nil))

			res, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RequeueAfter).To(Equal(common.DependencyRequeue))
			Expect(remote.Calls()).To(BeEmpty())

			got := getBucket()
			Expect(conditions.IsTrue(got.Status.Conditions, consts.ConditionProviderNotReady)).To(BeTrue())
			Expect(conditions.IsTrue(got.Status.Conditions, consts.ConditionReady)).To(BeFalse())
		})

		It("Should refuse to rename the remote bucket", func() {
			setup(readyProvider(), credsSecret(), newBucket(nil))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			got := getBucket()
			got.Spec.Name = "renamed-bucket"
			Expect(kube.Update(ctx, got)).To(Succeed())

			res, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RequeueAfter).To(BeZero())
			Expect(remote.CallCount("CreateBucket")).To(Equal(1))
			Expect(remote.Buckets).NotTo(HaveKey("renamed-bucket"))

			got = getBucket()
			ready := conditions.Get(got.Status.Conditions, consts.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionFalse))
			Expect(ready.Reason).To(Equal(consts.ReasonValidationFailed))
		})

		It("Should provision companion resources when autoManage is enabled", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.AutoManage = &s3v1alpha1.AutoManageConfig{Enabled: true, AccessLevel: consts.AccessLevelReadWrite}
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			user := &s3v1alpha1.User{}
			Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR + "-user", Namespace: namespace}, user)).To(Succeed())
			Expect(user.Spec.Name).To(Equal(bucketName))

			policy := &s3v1alpha1.BucketPolicy{}
			Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR + "-policy", Namespace: namespace}, policy)).To(Succeed())
			Expect(policy.Spec.BucketRef.Name).To(Equal(bucketCR))
			Expect(policy.Spec.Policy.Statement).To(HaveLen(1))
			Expect(policy.Spec.Policy.Statement[0].Action).To(ContainElement("s3:PutObject"))

			accessKey := &s3v1alpha1.AccessKey{}
			Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR + "-accesskey", Namespace: namespace}, accessKey)).To(Succeed())
			Expect(accessKey.Spec.UserRef.Name).To(Equal(bucketCR + "-user"))

			got := getBucket()
			Expect(got.Status.CredentialsSecret).To(Equal(bucketCR + "-accesskey-credentials"))
			Expect(metav1.IsControlledBy(user, got)).To(BeTrue())
			Expect(metav1.IsControlledBy(policy, got)).To(BeTrue())
			Expect(metav1.IsControlledBy(accessKey, got)).To(BeTrue())
		})

		It("Should leave edits to existing companion resources in place", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.AutoManage = &s3v1alpha1.AutoManageConfig{Enabled: true, AccessLevel: consts.AccessLevelReadWrite}
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			policy := &s3v1alpha1.BucketPolicy{}
			nn := types.NamespacedName{Name: bucketCR + "-policy", Namespace: namespace}
			Expect(kube.Get(ctx, nn, policy)).To(Succeed())
			policy.Spec.Policy.Statement[0].Action = []string{"s3:GetObject"}
			Expect(kube.Update(ctx, policy)).To(Succeed())

			user := &s3v1alpha1.User{}
			Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR + "-user", Namespace: namespace}, user)).To(Succeed())
			user.Spec.Name = "handpicked-user"
			Expect(kube.Update(ctx, user)).To(Succeed())

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(kube.Get(ctx, nn, policy)).To(Succeed())
			Expect(policy.Spec.Policy.Statement[0].Action).To(Equal([]string{"s3:GetObject"}))
			Expect(kube.Get(ctx, types.NamespacedName{Name: bucketCR + "-user", Namespace: namespace}, user)).To(Succeed())
			Expect(user.Spec.Name).To(Equal("handpicked-user"))
		})
	})

	Context("When deleting a bucket", func() {
		It("Should retain the remote bucket by default", func() {
			setup(readyProvider(), credsSecret(), newBucket(nil))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(kube.Delete(ctx, getBucket())).To(Succeed())

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(remote.Buckets).To(HaveKey(bucketName))
			err = kube.Get(ctx, types.NamespacedName{Name: bucketCR, Namespace: namespace}, &s3v1alpha1.Bucket{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("Should empty and delete the remote bucket with deletionPolicy Delete and forceDelete", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.DeletionPolicy = consts.DeletionPolicyDelete
				b.Spec.ForceDelete = true
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			remote.Buckets[bucketName].Objects = 3
			Expect(kube.Delete(ctx, getBucket())).To(Succeed())

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(remote.CallCount("EmptyBucket")).To(Equal(1))
			Expect(remote.Buckets).NotTo(HaveKey(bucketName))
			err = kube.Get(ctx, types.NamespacedName{Name: bucketCR, Namespace: namespace}, &s3v1alpha1.Bucket{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("Should release the finalizer when the provider is already gone", func() {
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.DeletionPolicy = consts.DeletionPolicyDelete
			}))

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(kube.Delete(ctx, readyProvider())).To(Succeed())
			Expect(kube.Delete(ctx, getBucket())).To(Succeed())

			remote.ResetCalls()
			res, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RequeueAfter).To(BeZero())
			Expect(remote.Calls()).To(BeEmpty())

			err = kube.Get(ctx, types.NamespacedName{Name: bucketCR, Namespace: namespace}, &s3v1alpha1.Bucket{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("Should block deletion while foreign bucket policies target the bucket", func() {
			foreign := &s3v1alpha1.BucketPolicy{
				ObjectMeta: metav1.ObjectMeta{Name: "foreign", Namespace: namespace},
				Spec: s3v1alpha1.BucketPolicySpec{
					BucketRef: s3v1alpha1.ResourceReference{Name: bucketCR},
				},
			}
			setup(readyProvider(), credsSecret(), newBucket(func(b *s3v1alpha1.Bucket) {
				b.Spec.DeletionPolicy = consts.DeletionPolicyDelete
			}), foreign)

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(kube.Delete(ctx, getBucket())).To(Succeed())

			res, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RequeueAfter).To(Equal(common.DependencyRequeue))

			Expect(remote.Buckets).To(HaveKey(bucketName))
			got := getBucket()
			Expect(conditions.IsTrue(got.Status.Conditions, consts.ConditionDependenciesExist)).To(BeTrue())
		})
	})
})
