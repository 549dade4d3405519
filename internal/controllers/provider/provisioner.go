package provider

import (
	"context"
	"errors"

	"github.com/opdev/subreconciler"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	s3v1alpha1 "github.com/cloud37-dev/s3-operator/api/v1alpha1"
	"github.com/cloud37-dev/s3-operator/internal/controllers/common"
	"github.com/cloud37-dev/s3-operator/internal/resolver"
	"github.com/cloud37-dev/s3-operator/internal/s3client"
	"github.com/cloud37-dev/s3-operator/pkg/conditions"
	"github.com/cloud37-dev/s3-operator/pkg/consts"
	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Provision resolves the credentials, probes the endpoint and publishes the
// outcome on status.
func (r *Reconciler) Provision(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	key := req.String()

	subrecs := []subreconciler.Fn{
		r.resolveRemote(key),
		r.probeEndpoint(key),
		r.updateStatus,
	}
	for _, subrec := range subrecs {
		result, err := subrec(ctx)
		if subreconciler.ShouldHaltOrRequeue(result, err) {
			return subreconciler.Evaluate(result, err)
		}
	}

	r.deps.Backoff.Reset(key)
	return ctrl.Result{RequeueAfter: r.deps.Config.DriftInterval}, nil
}

func (r *Reconciler) resolveRemote(key string) subreconciler.Fn {
	return func(ctx context.Context) (*ctrl.Result, error) {
		ref := s3v1alpha1.ResourceReference{Name: r.provider.Name, Namespace: r.provider.Namespace}
		remote, _, err := r.deps.Resolver.Resolve(ctx, ref, r.provider.Namespace)
		if err == nil {
			r.remote = remote
			return subreconciler.ContinueReconciling()
		}

		var nre *resolver.NotReadyError
		if errors.As(err, &nre) {
			r.setCondition(consts.ConditionAuthValid, metav1.ConditionFalse, nre.Reason, nre.Message)
		} else {
			r.setCondition(consts.ConditionAuthValid, metav1.ConditionFalse, consts.ReasonReconcileError, redact.Error(err))
		}
		r.provider.Status.Connected = false
		conditions.ComputeReady(&r.provider.Status.Conditions, r.provider.Generation,
			consts.ConditionAuthValid, consts.ConditionEndpointReachable)
		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(key, err))
	}
}

func (r *Reconciler) probeEndpoint(key string) subreconciler.Fn {
	return func(ctx context.Context) (*ctrl.Result, error) {
		err := r.remote.Probe(ctx)
		if err == nil {
			now := metav1.NewTime(r.deps.Clock.Now())
			r.provider.Status.Connected = true
			r.provider.Status.LastConnectTime = &now
			r.setCondition(consts.ConditionAuthValid, metav1.ConditionTrue, consts.ReasonReconcileSuccess, "credentials accepted")
			r.setCondition(consts.ConditionEndpointReachable, metav1.ConditionTrue, consts.ReasonReconcileSuccess, "endpoint responded")
			conditions.ComputeReady(&r.provider.Status.Conditions, r.provider.Generation,
				consts.ConditionAuthValid, consts.ConditionEndpointReachable)
			return subreconciler.ContinueReconciling()
		}

		r.provider.Status.Connected = false
		switch {
		case errors.Is(err, s3client.ErrAuthFailed):
			// a rejection proves the endpoint is alive
			r.setCondition(consts.ConditionEndpointReachable, metav1.ConditionTrue, consts.ReasonReconcileSuccess, "endpoint responded")
			r.setCondition(consts.ConditionAuthValid, metav1.ConditionFalse, consts.ReasonRemoteError, redact.Error(err))
		case errors.Is(err, s3client.ErrUnreachable):
			r.setCondition(consts.ConditionEndpointReachable, metav1.ConditionFalse, consts.ReasonRemoteError, redact.Error(err))
		default:
			r.setCondition(consts.ConditionEndpointReachable, metav1.ConditionFalse, consts.ReasonRemoteError, redact.Error(err))
		}
		conditions.ComputeReady(&r.provider.Status.Conditions, r.provider.Generation,
			consts.ConditionAuthValid, consts.ConditionEndpointReachable)

		if res, uerr := r.updateStatus(ctx); subreconciler.ShouldHaltOrRequeue(res, uerr) {
			return res, uerr
		}
		return subreconciler.RequeueWithDelay(r.deps.FailureDelay(key, err))
	}
}

func (r *Reconciler) setCondition(condType string, status metav1.ConditionStatus, reason, message string) {
	conditions.Set(&r.provider.Status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		ObservedGeneration: r.provider.Generation,
	})
}

func (r *Reconciler) updateStatus(ctx context.Context) (*ctrl.Result, error) {
	r.provider.Status.ObservedGeneration = r.provider.Generation

	current := &s3v1alpha1.Provider{}
	if err := r.Get(ctx, client.ObjectKeyFromObject(r.provider), current); err != nil {
		return subreconciler.Requeue()
	}
	if apiequality.Semantic.DeepEqual(current.Status, r.provider.Status) {
		return subreconciler.ContinueReconciling()
	}

	if err := r.Status().Update(ctx, r.provider); err != nil {
		if common.IsOptimisticLock(err) {
			r.logger.Info("re-queuing item due to optimistic locking on resource", "error", err.Error())
		} else {
			r.logger.Error(err, "failed to update provider status")
		}
		return subreconciler.Requeue()
	}
	return subreconciler.ContinueReconciling()
}
