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

package provider

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/opdev/subreconciler"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
)

// Reconciler reconciles a Provider object
type Reconciler struct {
	client.Client
	scheme *runtime.Scheme
	logger logr.Logger
	deps   *common.Deps
	// reconcile specific variables
	provider *s3v1alpha1.Provider
	remote   s3client.Client
}

func NewReconciler(mgr manager.Manager, deps *common.Deps) *Reconciler {
	return &Reconciler{
		Client: mgr.GetClient(),
		scheme: mgr.GetScheme(),
		deps:   deps,
	}
}

//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=providers,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=providers/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=s3.cloud37.dev,resources=providers/finalizers,verbs=update
//+kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch

// Reconcile probes the remote endpoint with the referenced credentials and
// publishes the result as conditions.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	r.logger = log.FromContext(ctx)
	r.provider = &s3v1alpha1.Provider{}
	r.remote = nil

	switch err := r.Get(ctx, req.NamespacedName, r.provider); {
	case apierrors.IsNotFound(err):
		r.deps.Backoff.Reset(req.String())
		return ctrl.Result{}, nil
	case err != nil:
		r.logger.Error(err, "failed to fetch object")
		return subreconciler.Evaluate(subreconciler.Requeue())
	}

	if r.provider.DeletionTimestamp != nil {
		// providers own nothing remote; dependents gate themselves
		r.deps.Resolver.Invalidate(req.NamespacedName)
		return ctrl.Result{}, nil
	}

	return r.Provision(ctx, req)
}

// SetupWithManager sets up the controller with the Manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&s3v1alpha1.Provider{}).
		Complete(r)
}
