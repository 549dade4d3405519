/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bucketpolicy

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/opdev/subreconciler"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/resolver"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Reconciler reconciles a BucketPolicy object
type Reconciler struct {
	client.Client
	scheme *runtime.Scheme
	logger logr.Logger
	deps   *common.Deps
	// reconcile specific variables
	policy     *s3v1alpha1.BucketPolicy
	bucket     *s3v1alpha1.Bucket
	remote     s3client.Client
	requeueKey string
}

func NewReconciler(mgr manager.Manager, deps *common.Deps) *Reconciler {
	return &Reconciler{
		Client: mgr.GetClient(),
		scheme: mgr.GetScheme(),
		deps:   deps,
	}
}

//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=bucketpolicies,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=bucketpolicies/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=bucketpolicies/finalizers,verbs=update
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=buckets,verbs=get;list;watch

// Reconcile applies the declared policy document onto the target bucket.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	r.logger = log.FromContext(ctx)
	r.policy = &s3v1alpha1.BucketPolicy{}
	r.requeueKey = req.String()

	switch err := r.Get(ctx, req.NamespacedName, r.policy); {
	case apierrors.IsNotFound(err):
		r.deps.Backoff.Reset(r.requeueKey)
		return ctrl.Result{}, nil
	case err != nil:
		r.logger.Error(err, "failed to fetch object")
		return subreconciler.Evaluate(subreconciler.Requeue())
	}

	if r.policy.DeletionTimestamp != nil {
		return r.Cleanup(ctx)
	}

	if res, err := r.resolveBucket(ctx); subreconciler.ShouldHaltOrRequeue(res, err) {
		return subreconciler.Evaluate(res, err)
	}
	return r.Provision(ctx)
}

// resolveBucket gates on the target Bucket being Ready and resolves the
// remote client through the bucket's provider.
func (r *Reconciler) resolveBucket(ctx context.Context) (*ctrl.Result, error) {
	nn := types.NamespacedName{Name: r.policy.Spec.BucketRef.Name, Namespace: r.policy.Spec.BucketRef.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = r.policy.Namespace
	}

	bucket := &s3v1alpha1.Bucket{}
	switch err := r.Get(ctx, nn, bucket); {
	case apierrors.IsNotFound(err):
		r.setGate(consts.ConditionBucketNotReady, "referenced bucket does not exist")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	case err != nil:
		return subreconciler.Requeue()
	}

	if !conditions.IsTrue(bucket.Status.Conditions, consts.ConditionReady) {
		r.setGate(consts.ConditionBucketNotReady, "bucket is not ready")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	remote, provider, err := r.deps.Resolver.Resolve(ctx, bucket.Spec.ProviderRef, bucket.Namespace)
	if err != nil {
		var nre *resolver.NotReadyError
		if errors.As(err, &nre) || errors.Is(err, resolver.ErrProviderNotFound) {
			r.setGate(consts.ConditionProviderNotReady, redact.Error(err))
			if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
				return res, uerr
			}
			return subreconciler.RequeueWithDelay(common.DependencyRequeue)
		}
		return subreconciler.RequeueWithError(err)
	}
	if !conditions.IsTrue(provider.Status.Conditions, consts.ConditionReady) {
		r.setGate(consts.ConditionProviderNotReady, "provider is not ready")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	r.bucket = bucket
	r.remote = remote
	r.setCondition(consts.ConditionBucketNotReady, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	r.setCondition(consts.ConditionProviderNotReady, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) setGate(condType, message string) {
	r.setCondition(condType, metav1.ConditionTrue, consts.ReasonDependencyWait, message)
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonDependencyWait, message)
}

func (r *Reconciler) setCondition(condType string, status metav1.ConditionStatus, reason, message string) {
	conditions.Set(&r.policy.Status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            redact.String(message),
		ObservedGeneration: r.policy.Generation,
	})
}

func (r *Reconciler) updateStatus(ctx context.Context) (*ctrl.Result, error) {
	r.policy.Status.ObservedGeneration = r.policy.Generation

	current := &s3v1alpha1.BucketPolicy{}
	if err := r.Get(ctx, client.ObjectKeyFromObject(r.policy), current); err != nil {
		return subreconciler.Requeue()
	}
	if apiequality.Semantic.DeepEqual(current.Status, r.policy.Status) {
		return subreconciler.ContinueReconciling()
	}

	if err := r.Status().Update(ctx, r.policy); err != nil {
		if common.IsOptimisticLock(err) {
			r.logger.Info("re-queuing item due to optimistic locking on resource", "error", err.Error())
		} else {
			r.logger.Error(err, "failed to update bucket policy status")
		}
		return subreconciler.Requeue()
	}
	return subreconciler.ContinueReconciling()
}

// SetupWithManager sets up the controller with the Manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&s3v1alpha1.BucketPolicy{}).
		Complete(r)
}
