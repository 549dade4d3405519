package conditions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/cloud37-dev/s3-operator/pkg/consts"
)

func TestSetPreservesTransitionTimeOnRefresh(t *testing.T) {
	past := metav1.NewTime(time.Now().Add(-time.Hour))
	conds := []metav1.Condition{{
		Type:               consts.ConditionEndpointReachable,
		Status:             metav1.ConditionTrue,
		Reason:             consts.ReasonReconcileSuccess,
		Message:            "probe ok",
		LastTransitionTime: past,
		ObservedGeneration: 1,
	}}

	changed := Set(&conds, metav1.Condition{
		Type:               consts.ConditionEndpointReachable,
		Status:             metav1.ConditionTrue,
		Reason:             consts.ReasonReconcileSuccess,
		Message:            "probe ok",
		ObservedGeneration: 2,
	})

	require.Len(t, conds, 1)
	assert.True(t, changed, "observedGeneration bump counts as a change")
	assert.Equal(t, past, conds[0].LastTransitionTime)
	assert.Equal(t, int64(2), conds[0].ObservedGeneration)

	changed = Set(&conds, metav1.Condition{
		Type:               consts.ConditionEndpointReachable,
		Status:             metav1.ConditionTrue,
		Reason:             consts.ReasonReconcileSuccess,
		Message:            "probe ok",
		ObservedGeneration: 2,
	})
	assert.False(t, changed, "identical condition must not dirty the list")
}

func TestSetReplacesOnStatusChange(t *testing.T) {
	past := metav1.NewTime(time.Now().Add(-time.Hour))
	conds := []metav1.Condition{{
		Type:               consts.ConditionAuthValid,
		Status:             metav1.ConditionTrue,
		Reason:             consts.ReasonReconcileSuccess,
		LastTransitionTime: past,
	}}

	changed := Set(&conds, metav1.Condition{
		Type:    consts.ConditionAuthValid,
		Status:  metav1.ConditionFalse,
		Reason:  consts.ReasonRemoteError,
		Message: "invalid credentials",
	})

	require.True(t, changed)
	require.Len(t, conds, 1)
	assert.Equal(t, metav1.ConditionFalse, conds[0].Status)
	assert.True(t, conds[0].LastTransitionTime.After(past.Time))
}

func TestComputeReady(t *testing.T) {
	var conds []metav1.Condition
	Set(&conds, metav1.Condition{
		Type:   consts.ConditionAuthValid,
		Status: metav1.ConditionTrue,
		Reason: consts.ReasonReconcileSuccess,
	})

	ready := ComputeReady(&conds, 3, consts.ConditionAuthValid, consts.ConditionEndpointReachable)
	assert.False(t, ready)
	readyCond := Get(conds, consts.ConditionReady)
	require.NotNil(t, readyCond)
	assert.Equal(t, metav1.ConditionFalse, readyCond.Status)

	Set(&conds, metav1.Condition{
		Type:   consts.ConditionEndpointReachable,
		Status: metav1.ConditionTrue,
		Reason: consts.ReasonReconcileSuccess,
	})
	ready = ComputeReady(&conds, 3, consts.ConditionAuthValid, consts.ConditionEndpointReachable)
	assert.True(t, ready)
	assert.True(t, IsTrue(conds, consts.ConditionReady))
	assert.Equal(t, int64(3), Get(conds, consts.ConditionReady).ObservedGeneration)
}
