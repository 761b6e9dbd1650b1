package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
)

func newSlot() *appservicev1alpha1.WebAppSlot {
	return &appservicev1alpha1.WebAppSlot{
		ObjectMeta: metav1.ObjectMeta{Name: "staging", Generation: 3},
	}
}

func TestMarkReady(t *testing.T) {
	slot := newSlot()
	MarkFailed(slot, ReasonRemoteFault, "boom")
	MarkReady(slot, "slot converged")

	assert.True(t, IsReady(slot))
	assert.False(t, IsDegraded(slot))
	assert.Equal(t, appservicev1alpha1.SlotPhaseReady, slot.Status.Phase)
	assert.Equal(t, int64(3), slot.Status.ObservedGeneration)
	assert.Empty(t, slot.Status.LastError)

	ready := Get(slot, appservicev1alpha1.ConditionReady)
	require.NotNil(t, ready)
	assert.Equal(t, ReasonReconciled, ready.Reason)
	assert.Equal(t, int64(3), ready.ObservedGeneration)
}

func TestMarkFailedSetsDegraded(t *testing.T) {
	slot := newSlot()
	MarkFailed(slot, ReasonSpecInvalid, "frameworks and container are mutually exclusive")

	assert.False(t, IsReady(slot))
	assert.True(t, IsDegraded(slot))
	assert.Equal(t, appservicev1alpha1.SlotPhaseFailed, slot.Status.Phase)
	assert.Equal(t, "frameworks and container are mutually exclusive", slot.Status.LastError)
}

func TestMarkReconciling(t *testing.T) {
	slot := newSlot()
	MarkReconciling(slot, ReasonReconciling, "applying configuration")

	assert.False(t, IsReady(slot))
	assert.Equal(t, appservicev1alpha1.SlotPhasePending, slot.Status.Phase)

	synced := Get(slot, appservicev1alpha1.ConditionSynced)
	require.NotNil(t, synced)
	assert.Equal(t, metav1.ConditionFalse, synced.Status)
}
