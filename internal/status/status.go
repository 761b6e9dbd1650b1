// Package status manages WebAppSlot status conditions and phase derivation.
package status

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
)

// Reasons used across WebAppSlot conditions.
const (
	ReasonReconciled      = "Reconciled"
	ReasonReconciling     = "Reconciling"
	ReasonSpecInvalid     = "SpecInvalid"
	ReasonTargetMissing   = "TargetMissing"
	ReasonRemoteFault     = "RemoteFault"
	ReasonSlotDeleted     = "SlotDeleted"
	ReasonCleanupFailed   = "CleanupFailed"
	ReasonCleanupComplete = "CleanupComplete"
)

// Set adds or updates a condition on the slot, stamping the current
// generation and transition time.
func Set(slot *appservicev1alpha1.WebAppSlot, conditionType appservicev1alpha1.ConditionType, condStatus metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(&slot.Status.Conditions, metav1.Condition{
		Type:               string(conditionType),
		Status:             condStatus,
		Reason:             reason,
		Message:            message,
		ObservedGeneration: slot.Generation,
		LastTransitionTime: metav1.Now(),
	})
}

// MarkReady records a successful reconciliation pass.
func MarkReady(slot *appservicev1alpha1.WebAppSlot, message string) {
	Set(slot, appservicev1alpha1.ConditionReady, metav1.ConditionTrue, ReasonReconciled, message)
	Set(slot, appservicev1alpha1.ConditionSynced, metav1.ConditionTrue, ReasonReconciled, message)
	meta.RemoveStatusCondition(&slot.Status.Conditions, string(appservicev1alpha1.ConditionDegraded))
	slot.Status.Phase = appservicev1alpha1.SlotPhaseReady
	slot.Status.ObservedGeneration = slot.Generation
	slot.Status.LastError = ""
}

// MarkReconciling records an in-progress or retriable state.
func MarkReconciling(slot *appservicev1alpha1.WebAppSlot, reason, message string) {
	Set(slot, appservicev1alpha1.ConditionReady, metav1.ConditionFalse, reason, message)
	Set(slot, appservicev1alpha1.ConditionSynced, metav1.ConditionFalse, reason, message)
	slot.Status.Phase = appservicev1alpha1.SlotPhasePending
}

// MarkFailed records a terminal failure. Terminal failures do not requeue
// until the spec changes.
func MarkFailed(slot *appservicev1alpha1.WebAppSlot, reason, message string) {
	Set(slot, appservicev1alpha1.ConditionReady, metav1.ConditionFalse, reason, message)
	Set(slot, appservicev1alpha1.ConditionSynced, metav1.ConditionFalse, reason, message)
	Set(slot, appservicev1alpha1.ConditionDegraded, metav1.ConditionTrue, reason, message)
	slot.Status.Phase = appservicev1alpha1.SlotPhaseFailed
	slot.Status.ObservedGeneration = slot.Generation
	slot.Status.LastError = message
}

// IsReady reports whether the Ready condition is true.
func IsReady(slot *appservicev1alpha1.WebAppSlot) bool {
	return meta.IsStatusConditionTrue(slot.Status.Conditions, string(appservicev1alpha1.ConditionReady))
}

// IsDegraded reports whether the Degraded condition is true.
func IsDegraded(slot *appservicev1alpha1.WebAppSlot) bool {
	return meta.IsStatusConditionTrue(slot.Status.Conditions, string(appservicev1alpha1.ConditionDegraded))
}

// Get returns the condition of the given type, or nil.
func Get(slot *appservicev1alpha1.WebAppSlot, conditionType appservicev1alpha1.ConditionType) *metav1.Condition {
	return meta.FindStatusCondition(slot.Status.Conditions, string(conditionType))
}
