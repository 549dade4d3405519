// Package conditions manipulates metav1.Condition lists with churn
// avoidance: setting a condition that only differs in message or
// observedGeneration refreshes those fields without touching
// lastTransitionTime, so status updates stay cheap to diff.
package conditions

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

// Set upserts cond into the list. lastTransitionTime changes only when the
// status or reason actually changed. Returns true if the list was modified.
func Set(conds *[]metav1.Condition, cond metav1.Condition) bool {
	if cond.LastTransitionTime.IsZero() {
		cond.LastTransitionTime = metav1.Now()
	}

	for i := range *conds {
		existing := &(*conds)[i]
		if existing.Type != cond.Type {
			continue
		}
		if existing.Status == cond.Status && existing.Reason == cond.Reason {
			changed := existing.Message != cond.Message ||
				existing.ObservedGeneration != cond.ObservedGeneration
			existing.Message = cond.Message
			existing.ObservedGeneration = cond.ObservedGeneration
			return changed
		}
		*existing = cond
		return true
	}

	*conds = append(*conds, cond)
	return true
}

// Get returns the condition of the given type, or nil.
func Get(conds []metav1.Condition, condType string) *metav1.Condition {
	for i := range conds {
		if conds[i].Type == condType {
			return &conds[i]
		}
	}
	return nil
}

// IsTrue reports whether the condition exists with status True.
func IsTrue(conds []metav1.Condition, condType string) bool {
	c := Get(conds, condType)
	return c != nil && c.Status == metav1.ConditionTrue
}

// ComputeReady derives the Ready condition from the required condition
// types: Ready is True only when every required condition is True.
func ComputeReady(conds *[]metav1.Condition, generation int64, required ...string) bool {
	for _, req := range required {
		c := Get(*conds, req)
		if c == nil || c.Status != metav1.ConditionTrue {
			reason := consts.ReasonDependencyWait
			msg := req + " is not satisfied"
			if c != nil && c.Reason != "" {
				reason = c.Reason
				if c.Message != "" {
					msg = c.Message
				}
			}
			Set(conds, metav1.Condition{
				Type:               consts.ConditionReady,
				Status:             metav1.ConditionFalse,
				Reason:             reason,
				Message:            msg,
				ObservedGeneration: generation,
			})
			return false
		}
	}
	Set(conds, metav1.Condition{
		Type:               consts.ConditionReady,
		Status:             metav1.ConditionTrue,
		Reason:             consts.ReasonReconcileSuccess,
		ObservedGeneration: generation,
	})
	return true
}
