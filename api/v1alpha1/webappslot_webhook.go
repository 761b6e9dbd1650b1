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

package v1alpha1

import (
	"context"
	"fmt"
	"sort"
	"strings"

	containername "github.com/google/go-containerregistry/pkg/name"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

var webAppSlotWebhookLog = ctrl.Log.WithName("webappslot-webhook")

var (
	linuxFrameworkNames = map[string]bool{
		"ruby": true, "php": true, "dotnetcore": true, "node": true, "java": true,
	}
	windowsFrameworkNames = map[string]bool{
		"net_framework": true, "php": true, "python": true, "node": true, "java": true,
	}
	frameworkSettingKeys = map[string]bool{
		"java_container": true, "java_container_version": true,
	}
)

// webAppSlotValidator implements admission.CustomValidator for WebAppSlot.
type webAppSlotValidator struct{}

var _ webhook.CustomValidator = &webAppSlotValidator{}

// webAppSlotDefaulter injects defaults that are independent of reconciliation
// logic, most notably the cleanup finalizer.
type webAppSlotDefaulter struct{}

var _ webhook.CustomDefaulter = &webAppSlotDefaulter{}

// Default sets default values on WebAppSlot resources during admission.
func (d *webAppSlotDefaulter) Default(_ context.Context, obj runtime.Object) error {
	slot, ok := obj.(*WebAppSlot)
	if !ok {
		return apierrors.NewBadRequest("expected WebAppSlot object for defaulting")
	}

	// During deletion the controller must be able to remove the finalizer;
	// re-adding it on update would leave the resource stuck terminating.
	if slot.DeletionTimestamp != nil && !slot.DeletionTimestamp.IsZero() {
		return nil
	}

	if !containsString(slot.Finalizers, WebAppSlotFinalizer) {
		slot.Finalizers = append(slot.Finalizers, WebAppSlotFinalizer)
	}

	if slot.Spec.State == "" {
		slot.Spec.State = SlotPresent
	}
	if slot.Spec.AppState == "" {
		slot.Spec.AppState = SlotStarted
	}
	if slot.Spec.DeletionPolicy == "" {
		slot.Spec.DeletionPolicy = DeletionPolicyRetain
	}

	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}

	return false
}

// SetupWebhookWithManager registers the WebAppSlot webhooks with the manager.
func (r *WebAppSlot) SetupWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr).
		For(&WebAppSlot{}).
		WithValidator(&webAppSlotValidator{}).
		WithDefaulter(&webAppSlotDefaulter{}).
		Complete()
}

// +kubebuilder:webhook:path=/mutate-appservice-dc-tec-io-v1alpha1-webappslot,mutating=true,failurePolicy=fail,sideEffects=None,groups=appservice.dc-tec.io,resources=webappslots,verbs=create;update,versions=v1alpha1,name=mwebappslot.kb.io,admissionReviewVersions=v1

// +kubebuilder:webhook:path=/validate-appservice-dc-tec-io-v1alpha1-webappslot,mutating=false,failurePolicy=fail,sideEffects=None,groups=appservice.dc-tec.io,resources=webappslots,verbs=create;update,versions=v1alpha1,name=vwebappslot.kb.io,admissionReviewVersions=v1

// ValidateCreate validates WebAppSlot resources on create.
func (v *webAppSlotValidator) ValidateCreate(_ context.Context, obj runtime.Object) (admission.Warnings, error) {
	slot, ok := obj.(*WebAppSlot)
	if !ok {
		return nil, apierrors.NewBadRequest("expected WebAppSlot object for validation")
	}

	webAppSlotWebhookLog.Info("validating create", "name", slot.Name, "namespace", slot.Namespace)

	return validateWebAppSlot(slot)
}

// ValidateUpdate validates WebAppSlot resources on update.
func (v *webAppSlotValidator) ValidateUpdate(_ context.Context, _, newObj runtime.Object) (admission.Warnings, error) {
	slot, ok := newObj.(*WebAppSlot)
	if !ok {
		return nil, apierrors.NewBadRequest("expected WebAppSlot object for validation")
	}

	webAppSlotWebhookLog.Info("validating update", "name", slot.Name, "namespace", slot.Namespace)

	return validateWebAppSlot(slot)
}

// ValidateDelete validates WebAppSlot resources on delete. Cleanup-time
// invariants are handled by the controller's finalizer path.
func (v *webAppSlotValidator) ValidateDelete(_ context.Context, obj runtime.Object) (admission.Warnings, error) {
	if _, ok := obj.(*WebAppSlot); !ok {
		return nil, apierrors.NewBadRequest("expected WebAppSlot object for validation")
	}

	return nil, nil
}

func validateWebAppSlot(slot *WebAppSlot) (admission.Warnings, error) {
	var allErrs field.ErrorList
	var warnings admission.Warnings

	allErrs = append(allErrs, validateRuntime(slot)...)
	allErrs = append(allErrs, validateSwapBlock(slot)...)
	allErrs = append(allErrs, validateAutoSwapBlock(slot)...)
	allErrs = append(allErrs, validateDeploymentSourceBlock(slot)...)

	if slot.Spec.AppState == SlotRestarted {
		warnings = append(warnings, "appState 'restarted' restarts the slot on every spec change")
	}
	if slot.Spec.PurgeAppSettings && len(slot.Spec.AppSettings) == 0 {
		warnings = append(warnings, "purgeAppSettings with no appSettings clears every remote setting")
	}

	if len(allErrs) > 0 {
		return warnings, apierrors.NewInvalid(
			GroupVersion.WithKind("WebAppSlot").GroupKind(),
			slot.Name,
			allErrs,
		)
	}

	return warnings, nil
}

// validateRuntime enforces the runtime selection rules: frameworks and
// containerSettings are mutually exclusive, java cannot be combined with
// other frameworks, and container image references must parse.
func validateRuntime(slot *WebAppSlot) field.ErrorList {
	var allErrs field.ErrorList

	fwPath := field.NewPath("spec", "frameworks")
	csPath := field.NewPath("spec", "containerSettings")

	if len(slot.Spec.Frameworks) > 0 && slot.Spec.ContainerSettings != nil {
		allErrs = append(allErrs, field.Invalid(fwPath, slot.Spec.Frameworks,
			"frameworks and containerSettings are mutually exclusive"))
		return allErrs
	}

	seen := map[string]bool{}
	for i, fw := range slot.Spec.Frameworks {
		p := fwPath.Index(i)
		name := strings.ToLower(fw.Name)
		if !linuxFrameworkNames[name] && !windowsFrameworkNames[name] {
			allErrs = append(allErrs, field.NotSupported(p.Child("name"), fw.Name,
				supportedFrameworkNames()))
		}
		if seen[name] {
			allErrs = append(allErrs, field.Duplicate(p.Child("name"), fw.Name))
		}
		seen[name] = true
		for key := range fw.Settings {
			if !frameworkSettingKeys[key] {
				allErrs = append(allErrs, field.NotSupported(p.Child("settings").Key(key), key,
					[]string{"java_container", "java_container_version"}))
			}
		}
	}
	if seen["java"] && len(slot.Spec.Frameworks) > 1 {
		allErrs = append(allErrs, field.Invalid(fwPath, frameworkNameList(slot.Spec.Frameworks),
			"java cannot be combined with other frameworks"))
	}

	if cs := slot.Spec.ContainerSettings; cs != nil {
		if _, err := containername.ParseReference(cs.Name, containername.WeakValidation); err != nil {
			allErrs = append(allErrs, field.Invalid(csPath.Child("name"), cs.Name,
				fmt.Sprintf("invalid container image reference: %v", err)))
		}
		if cs.RegistryServerPasswordSecretRef != nil && cs.RegistryServerUser == "" {
			allErrs = append(allErrs, field.Required(csPath.Child("registryServerUser"),
				"required when registryServerPasswordSecretRef is set"))
		}
	}

	return allErrs
}

func validateSwapBlock(slot *WebAppSlot) field.ErrorList {
	sw := slot.Spec.Swap
	if sw == nil {
		return nil
	}

	var allErrs field.ErrorList
	p := field.NewPath("spec", "swap")

	switch sw.Action {
	case SwapActionSwap, SwapActionPreview, SwapActionReset:
	default:
		allErrs = append(allErrs, field.NotSupported(p.Child("action"), sw.Action,
			[]string{string(SwapActionSwap), string(SwapActionPreview), string(SwapActionReset)}))
	}
	if strings.EqualFold(sw.TargetSlot, slot.Spec.SlotName) && sw.TargetSlot != "" {
		allErrs = append(allErrs, field.Invalid(p.Child("targetSlot"), sw.TargetSlot,
			"target slot must differ from the slot itself"))
	}

	return allErrs
}

func validateAutoSwapBlock(slot *WebAppSlot) field.ErrorList {
	as := slot.Spec.AutoSwap
	if as == nil {
		return nil
	}

	var allErrs field.ErrorList
	p := field.NewPath("spec", "autoSwap")

	if as.Disabled && as.SlotName != "" {
		allErrs = append(allErrs, field.Invalid(p.Child("slotName"), as.SlotName,
			"slotName must be empty when disabled is true"))
	}
	if !as.Disabled && as.SlotName == "" {
		allErrs = append(allErrs, field.Required(p.Child("slotName"),
			"required unless disabled is true"))
	}

	return allErrs
}

func validateDeploymentSourceBlock(slot *WebAppSlot) field.ErrorList {
	ds := slot.Spec.DeploymentSource
	if ds == nil {
		return nil
	}

	var allErrs field.ErrorList
	p := field.NewPath("spec", "deploymentSource")

	if ds.URL == "" {
		allErrs = append(allErrs, field.Required(p.Child("url"), "repository url is required"))
	}

	return allErrs
}

func supportedFrameworkNames() []string {
	names := map[string]bool{}
	for n := range linuxFrameworkNames {
		names[n] = true
	}
	for n := range windowsFrameworkNames {
		names[n] = true
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

func frameworkNameList(frameworks []FrameworkSpec) string {
	names := make([]string, 0, len(frameworks))
	for _, fw := range frameworks {
		names = append(names, fw.Name)
	}

	return strings.Join(names, ",")
}
