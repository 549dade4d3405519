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

package user

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/opdev/subreconciler"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
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

// Reconciler reconciles a User object
type Reconciler struct {
	client.Client
	scheme *runtime.Scheme
	logger logr.Logger
	deps   *common.Deps
	// reconcile specific variables
	user       *s3v1alpha1.User
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

//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=users,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=users/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=users/finalizers,verbs=update
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=iampolicies,verbs=get;list;watch

// Reconcile converges the remote IAM user with its attached policy.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	r.logger = log.FromContext(ctx)
	r.user = &s3v1alpha1.User{}
	r.remote = nil
	r.requeueKey = req.String()

	switch err := r.Get(ctx, req.NamespacedName, r.user); {
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

	if r.user.DeletionTimestamp != nil {
		return r.Cleanup(ctx)
	}
	return r.Provision(ctx)
}

func (r *Reconciler) resolveProvider(ctx context.Context) (*ctrl.Result, error) {
	remote, provider, err := r.deps.Resolver.Resolve(ctx, r.user.Spec.ProviderRef, r.user.Namespace)
	if err != nil {
		if r.user.DeletionTimestamp != nil &&
			(errors.Is(err, resolver.ErrProviderNotFound) || isNotReady(err)) {
			// nothing left to talk to; let Cleanup release the finalizer
			return subreconciler.ContinueReconciling()
		}
		var nre *resolver.NotReadyError
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

	if r.user.DeletionTimestamp == nil && !conditions.IsTrue(provider.Status.Conditions, consts.ConditionReady) {
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

func isNotReady(err error) bool {
	var nre *resolver.NotReadyError
	return errors.As(err, &nre)
}

func (r *Reconciler) setGate(condType, message string) {
	r.setCondition(condType, metav1.ConditionTrue, consts.ReasonDependencyWait, message)
	r.setCondition(consts.ConditionReady, metav1.ConditionFalse, consts.ReasonDependencyWait, message)
}

func (r *Reconciler) setCondition(condType string, status metav1.ConditionStatus, reason, message string) {
	conditions.Set(&r.user.Status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            redact.String(message),
		ObservedGeneration: r.user.Generation,
	})
}

func (r *Reconciler) updateStatus(ctx context.Context) (*ctrl.Result, error) {
	r.user.Status.ObservedGeneration = r.user.Generation

	current := &s3v1alpha1.User{}
	if err := r.Get(ctx, client.ObjectKeyFromObject(r.user), current); err != nil {
		return subreconciler.Requeue()
	}
	if apiequality.Semantic.DeepEqual(current.Status, r.user.Status) {
		return subreconciler.ContinueReconciling()
	}

	if err := r.Status().Update(ctx, r.user); err != nil {
		if common.IsOptimisticLock(err) {
			r.logger.Info("re-queuing item due to optimistic locking on resource", "error", err.Error())
		} else {
			r.logger.Error(err, "failed to update user status")
		}
		return subreconciler.Requeue()
	}
	return subreconciler.ContinueReconciling()
}

// SetupWithManager sets up the controller with the Manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&s3v1alpha1.User{}).
		Complete(r)
}
