/*
Copyright 2025.

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

package webappslot

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
	"github.com/dc-tec/appslot-operator/internal/azure"
	controllermetrics "github.com/dc-tec/appslot-operator/internal/controller"
	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/reconcile"
	"github.com/dc-tec/appslot-operator/internal/status"
)

const controllerName = "webappslot"

// WebAppSlotReconciler reconciles a WebAppSlot object against the Azure App
// Service management plane.
type WebAppSlotReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Gateway azure.Gateway
}

// +kubebuilder:rbac:groups=appservice.dc-tec.io,resources=webappslots,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=appservice.dc-tec.io,resources=webappslots/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=appservice.dc-tec.io,resources=webappslots/finalizers,verbs=update
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile drives one WebAppSlot toward its desired remote state. Every
// pass performs a fresh lookup against the management plane; nothing about
// the remote slot is cached between invocations.
func (r *WebAppSlotReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	reconcileMetrics := controllermetrics.NewReconcileMetrics(req.Namespace, req.Name, controllerName)
	startTime := time.Now()
	var reconcileErr error
	defer func() {
		reconcileMetrics.ObserveDuration(time.Since(startTime).Seconds())
		if reconcileErr != nil {
			reconcileMetrics.IncrementError(errorReason(reconcileErr))
		}
	}()

	logger := log.FromContext(ctx).WithValues(
		"slot_namespace", req.Namespace,
		"slot_name", req.Name,
		"controller", controllerName,
	)

	slot := &appservicev1alpha1.WebAppSlot{}
	if err := r.Get(ctx, req.NamespacedName, slot); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		reconcileErr = err
		return ctrl.Result{}, err
	}

	slotMetrics := controllermetrics.NewSlotMetrics(req.Namespace, req.Name)

	if slot.DeletionTimestamp != nil && !slot.DeletionTimestamp.IsZero() {
		result, err := r.finalize(ctx, logger, slot, slotMetrics)
		reconcileErr = err
		return result, err
	}

	if !containsFinalizer(slot.Finalizers, appservicev1alpha1.WebAppSlotFinalizer) {
		slot.Finalizers = append(slot.Finalizers, appservicev1alpha1.WebAppSlotFinalizer)
		if err := r.Update(ctx, slot); err != nil {
			reconcileErr = err
			return ctrl.Result{}, err
		}
	}

	desired, err := r.buildSpec(ctx, slot)
	if err != nil {
		logger.Error(err, "rejecting WebAppSlot spec", "target", slot.Spec.AppName+"/"+slot.Spec.SlotName)
		status.MarkFailed(slot, status.ReasonSpecInvalid, err.Error())
		slotMetrics.SetPhase(slot.Status.Phase)
		if statusErr := r.Status().Update(ctx, slot); statusErr != nil {
			reconcileErr = statusErr
			return ctrl.Result{}, statusErr
		}
		// Invalid specs are terminal until the spec changes.
		return ctrl.Result{}, nil
	}

	orchestrator := reconcile.NewOrchestrator(r.Gateway, logger, reconcile.Options{})
	outcome, err := orchestrator.Reconcile(ctx, desired)
	if err != nil {
		reconcileErr = err
		return r.handleReconcileError(ctx, logger, slot, slotMetrics, err)
	}

	if outcome.Changed {
		slotMetrics.RecordChanged()
	}

	message := "slot converged"
	if outcome.Changed {
		message = "slot updated"
	}
	status.MarkReady(slot, message)
	slot.Status.SlotID = outcome.ID
	slot.Status.LastObservedState = outcome.State
	slot.Status.LastReconcileChanged = outcome.Changed
	slotMetrics.SetPhase(slot.Status.Phase)
	if err := r.Status().Update(ctx, slot); err != nil {
		reconcileErr = err
		return ctrl.Result{}, err
	}

	logger.Info("reconciled WebAppSlot", "changed", outcome.Changed, "slot_id", outcome.ID)
	return ctrl.Result{}, nil
}

// handleReconcileError maps orchestration failures onto status conditions
// and requeue behavior. Validation and missing-target failures are terminal;
// throttled and transient remote faults requeue with a delay.
func (r *WebAppSlotReconciler) handleReconcileError(ctx context.Context, logger logr.Logger, slot *appservicev1alpha1.WebAppSlot, slotMetrics *controllermetrics.SlotMetrics, err error) (ctrl.Result, error) {
	reason := errorReason(err)

	requeue, delay := apperrors.ShouldRequeue(err)
	if !requeue {
		logger.Error(err, "WebAppSlot reconciliation failed terminally", "reason", reason)
		status.MarkFailed(slot, reason, err.Error())
		slotMetrics.SetPhase(slot.Status.Phase)
		if statusErr := r.Status().Update(ctx, slot); statusErr != nil {
			return ctrl.Result{}, statusErr
		}
		return ctrl.Result{}, nil
	}

	logger.Error(err, "WebAppSlot reconciliation failed, will retry", "reason", reason, "delay", delay)
	status.MarkReconciling(slot, reason, err.Error())
	slot.Status.LastError = err.Error()
	slotMetrics.SetPhase(slot.Status.Phase)
	if statusErr := r.Status().Update(ctx, slot); statusErr != nil {
		return ctrl.Result{}, statusErr
	}

	if delay > 0 {
		return ctrl.Result{RequeueAfter: delay}, nil
	}
	return ctrl.Result{}, err
}

// finalize runs the deletion path. With DeletionPolicy Delete the remote
// slot is removed before the finalizer is released; Retain leaves it alone.
func (r *WebAppSlotReconciler) finalize(ctx context.Context, logger logr.Logger, slot *appservicev1alpha1.WebAppSlot, slotMetrics *controllermetrics.SlotMetrics) (ctrl.Result, error) {
	if !containsFinalizer(slot.Finalizers, appservicev1alpha1.WebAppSlotFinalizer) {
		return ctrl.Result{}, nil
	}

	if slot.Spec.DeletionPolicy == appservicev1alpha1.DeletionPolicyDelete {
		id := azure.SlotID{
			ResourceGroup: slot.Spec.ResourceGroup,
			AppName:       slot.Spec.AppName,
			SlotName:      slot.Spec.SlotName,
		}
		logger.Info("deleting remote slot before finalizer release", "target", id.String())
		slotMetrics.RecordRemoteOperation("delete_slot")
		if err := r.Gateway.DeleteSlot(ctx, id); err != nil && !apperrors.IsNotFound(err) {
			status.MarkFailed(slot, status.ReasonCleanupFailed, err.Error())
			if statusErr := r.Status().Update(ctx, slot); statusErr != nil {
				return ctrl.Result{}, statusErr
			}
			requeue, delay := apperrors.ShouldRequeue(err)
			if requeue && delay > 0 {
				return ctrl.Result{RequeueAfter: delay}, nil
			}
			return ctrl.Result{}, err
		}
	}

	slotMetrics.Clear()
	slot.Finalizers = removeFinalizer(slot.Finalizers, appservicev1alpha1.WebAppSlotFinalizer)
	if err := r.Update(ctx, slot); err != nil {
		return ctrl.Result{}, err
	}

	logger.Info("released WebAppSlot finalizer")
	return ctrl.Result{}, nil
}

// errorReason folds an error into a low-cardinality metric/condition reason.
func errorReason(err error) string {
	switch {
	case apperrors.IsValidation(err):
		return status.ReasonSpecInvalid
	case apperrors.IsNotFound(err):
		return status.ReasonTargetMissing
	case apperrors.IsRemote(err):
		return status.ReasonRemoteFault
	default:
		return "Error"
	}
}

func containsFinalizer(finalizers []string, value string) bool {
	for _, f := range finalizers {
		if f == value {
			return true
		}
	}
	return false
}

func removeFinalizer(finalizers []string, value string) []string {
	result := make([]string, 0, len(finalizers))
	for _, f := range finalizers {
		if f == value {
			continue
		}
		result = append(result, f)
	}
	return result
}

