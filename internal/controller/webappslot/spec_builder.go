package webappslot

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// buildSpec translates a WebAppSlot resource into the desired-state model
// consumed by the orchestrator, resolving the registry password secret
// reference along the way. The password only ever lives in the in-memory
// spec, never in the resource or its status.
func (r *WebAppSlotReconciler) buildSpec(ctx context.Context, slot *appservicev1alpha1.WebAppSlot) (slotcfg.Spec, error) {
	spec := slotcfg.Spec{
		ResourceGroup:       slot.Spec.ResourceGroup,
		AppName:             slot.Spec.AppName,
		SlotName:            slot.Spec.SlotName,
		Location:            slot.Spec.Location,
		State:               slotcfg.PresenceState(slot.Spec.State),
		AppState:            slotcfg.AppState(slot.Spec.AppState),
		AppSettings:         slot.Spec.AppSettings,
		PurgeAppSettings:    slot.Spec.PurgeAppSettings,
		StartupFile:         slot.Spec.StartupFile,
		ScmType:             slot.Spec.ScmType,
		ConfigurationSource: slot.Spec.ConfigurationSource,
		Tags:                slot.Spec.Tags,
	}
	if spec.State == "" {
		spec.State = slotcfg.StatePresent
	}
	if spec.AppState == "" {
		spec.AppState = slotcfg.AppStateStarted
	}

	runtime, err := r.buildRuntime(ctx, slot)
	if err != nil {
		return slotcfg.Spec{}, err
	}
	spec.Runtime = runtime

	if ds := slot.Spec.DeploymentSource; ds != nil {
		spec.DeploymentSource = &slotcfg.DeploymentSource{URL: ds.URL, Branch: ds.Branch}
	}

	if as := slot.Spec.AutoSwap; as != nil {
		if as.Disabled {
			spec.AutoSwap = slotcfg.AutoSwapDisabled()
		} else {
			spec.AutoSwap = slotcfg.AutoSwapTo(as.SlotName)
		}
	}

	if sw := slot.Spec.Swap; sw != nil {
		spec.Swap = &slotcfg.SwapRequest{
			Action:     slotcfg.SwapAction(sw.Action),
			TargetSlot: sw.TargetSlot,
		}
	}

	if err := spec.Validate(); err != nil {
		return slotcfg.Spec{}, err
	}

	return spec, nil
}

func (r *WebAppSlotReconciler) buildRuntime(ctx context.Context, slot *appservicev1alpha1.WebAppSlot) (slotcfg.RuntimeSelection, error) {
	if cs := slot.Spec.ContainerSettings; cs != nil {
		if len(slot.Spec.Frameworks) > 0 {
			return slotcfg.RuntimeSelection{}, apperrors.NewValidation("frameworks and container settings are mutually exclusive")
		}

		password, err := r.resolveRegistryPassword(ctx, slot)
		if err != nil {
			return slotcfg.RuntimeSelection{}, err
		}

		return slotcfg.SelectContainer(slotcfg.ContainerSettings{
			Name:                   cs.Name,
			RegistryServerURL:      cs.RegistryServerURL,
			RegistryServerUser:     cs.RegistryServerUser,
			RegistryServerPassword: password,
		})
	}

	if len(slot.Spec.Frameworks) == 0 {
		return slotcfg.RuntimeSelection{}, nil
	}

	frameworks := make([]slotcfg.Framework, 0, len(slot.Spec.Frameworks))
	for _, fw := range slot.Spec.Frameworks {
		frameworks = append(frameworks, slotcfg.Framework{
			Name:     fw.Name,
			Version:  fw.Version,
			Settings: fw.Settings,
		})
	}

	return slotcfg.SelectFrameworks(frameworks)
}

// resolveRegistryPassword fetches the registry password from the referenced
// secret. A missing secret or key is a validation failure, not a remote
// fault: the spec points at something that does not exist.
func (r *WebAppSlotReconciler) resolveRegistryPassword(ctx context.Context, slot *appservicev1alpha1.WebAppSlot) (string, error) {
	ref := slot.Spec.ContainerSettings.RegistryServerPasswordSecretRef
	if ref == nil {
		return "", nil
	}

	secret := &corev1.Secret{}
	key := types.NamespacedName{Namespace: slot.Namespace, Name: ref.Name}
	if err := r.Get(ctx, key, secret); err != nil {
		return "", apperrors.NewValidation("registry password secret %q not readable: %v", ref.Name, err)
	}

	value, ok := secret.Data[ref.Key]
	if !ok {
		return "", apperrors.NewValidation("registry password secret %q has no key %q", ref.Name, ref.Key)
	}

	return string(value), nil
}
