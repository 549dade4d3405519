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

package accesskey

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/opdev/subreconciler"
	corev1 "k8s.io/api/core/v1"
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

// Reconciler reconciles an AccessKey object
type Reconciler struct {
	client.Client
	scheme *runtime.Scheme
	logger logr.Logger
	deps   *common.Deps
	// reconcile specific variables
	accessKey  *s3v1alpha1.AccessKey
	remote     s3client.Client
	userName   string
	requeueKey string
}

func NewReconciler(mgr manager.Manager, deps *common.Deps) *Reconciler {
	return &Reconciler{
		Client: mgr.GetClient(),
		scheme: mgr.GetScheme(),
		deps:   deps,
	}
}

//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=accesskeys,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=accesskeys/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=accesskeys/finalizers,verbs=update
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=users,verbs=get;list;watch
//+kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch;create;update;patch;delete

// Reconcile converges the remote credential pair, its generated Secret and
// the rotation schedule.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	r.logger = log.FromContext(ctx)
	r.accessKey = &s3v1alpha1.AccessKey{}
	r.remote = nil
	r.requeueKey = req.String()

	switch err := r.Get(ctx, req.NamespacedName, r.accessKey); {
	case apierrors.IsNotFound(err):
		r.deps.Backoff.Reset(r.requeueKey)
		return ctrl.Result{}, nil
	case err != nil:
		r.logger.Error(err, "failed to fetch object")
		return subreconciler.Evaluate(subreconciler.Requeue())
	}

	if res, err := r.resolveProvider(ctx); subreconciler.ShouldHaltOrRequeue(res, err) {
		return subreconciler.Evaluate(res, err)
	}

	if r.accessKey.DeletionTimestamp != nil {
		return r.Cleanup(ctx)
	}

	if res, err := r.resolveUser(ctx); subreconciler.ShouldHaltOrRequeue(res, err) {
		return subreconciler.Evaluate(res, err)
	}
	return r.Provision(ctx)
}

func (r *Reconciler) resolveProvider(ctx context.Context) (*ctrl.Result, error) {
	remote, provider, err := r.deps.Resolver.Resolve(ctx, r.accessKey.Spec.ProviderRef, r.accessKey.Namespace)
	if err != nil {
		var nre *resolver.NotReadyError
		if r.accessKey.DeletionTimestamp != nil &&
			(errors.Is(err, resolver.ErrProviderNotFound) || errors.As(err, &nre)) {
			// nothing left to talk to; let Cleanup release the finalizer
			return subreconciler.ContinueReconciling()
		}
		switch {
		case errors.As(err, &nre):
			r.setGate(consts.ConditionProviderNotReady, nre.Message)
		case errors.Is(err, resolver.ErrProviderNotFound):
			r.setGate(consts.ConditionProviderNotReady, "referenced provider does not exist")
		default:
			return subreconciler.RequeueWithError(err)
		}
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	if r.accessKey.DeletionTimestamp == nil && !conditions.IsTrue(provider.Status.Conditions, consts.ConditionReady) {
		r.setGate(consts.ConditionProviderNotReady, "provider is not ready")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	r.remote = remote
	r.setCondition(consts.ConditionProviderNotReady, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

// resolveUser gates provisioning on the referenced User being Ready and
// records the remote user name keys are minted under.
func (r *Reconciler) resolveUser(ctx context.Context) (*ctrl.Result, error) {
	nn := types.NamespacedName{Name: r.accessKey.Spec.UserRef.Name, Namespace: r.accessKey.Spec.UserRef.Namespace}
	if nn.Namespace == "" {
		nn.Namespace = r.accessKey.Namespace
	}

	user := &s3v1alpha1.User{}
	switch err := r.Get(ctx, nn, user); {
	case apierrors.IsNotFound(err):
		r.setGate(consts.ConditionUserNotReady, "referenced user does not exist")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	case err != nil:
		return subreconciler.Requeue()
	}

	if !conditions.IsTrue(user.Status.Conditions, consts.ConditionReady) {
		r.setGate(consts.ConditionUserNotReady, "user is not ready")
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(common.DependencyRequeue)
	}

	r.userName = user.Spec.Name
	r.setCondition(consts.ConditionUserNotReady, metav1.ConditionFalse, consts.ReasonReconcileSuccess, "")
	return subreconciler.ContinueReconciling()
}

func (r *Reconciler) setGate(condType, message string) {
	r.setCondition(condType, metav1.ConditionTrue, consts.ReasonDependencyWait, message)
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonDependencyWait, message)
}

func (r *Reconciler) setCondition(condType string, status metav1.ConditionStatus, reason, message string) {
	conditions.Set(&r.accessKey.Status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            redact.String(message),
		ObservedGeneration: r.accessKey.Generation,
	})
}

func (r *Reconciler) updateStatus(ctx context.Context) (*ctrl.Result, error) {
	r.accessKey.Status.ObservedGeneration = r.accessKey.Generation

	current := &s3v1alpha1.AccessKey{}
	if err := r.Get(ctx, client.ObjectKeyFromObject(r.accessKey), current); err != nil {
		return subreconciler.Requeue()
	}
	if apiequality.Semantic.DeepEqual(current.Status, r.accessKey.Status) {
		return subreconciler.ContinueReconciling()
	}

	if err := r.Status().Update(ctx, r.accessKey); err != nil {
		if common.IsOptimisticLock(err) {
			r.logger.Info("re-queuing item due to optimistic locking on resource", "error", err.Error())
		} else {
			r.logger.Error(err, "failed to update access key status")
		}
		return subreconciler.Requeue()
	}
	return subreconciler.ContinueReconciling()
}

// SetupWithManager sets up the controller with the Manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&s3v1alpha1.AccessKey{}).
		Owns(&corev1.Secret{}).
		Complete(r)
}
