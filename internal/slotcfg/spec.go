// Package slotcfg models the desired configuration of an App Service
// deployment slot and normalizes it into the canonical site-configuration
// patch applied by the reconciler.
package slotcfg

import (
	"strings"

	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
)

// PresenceState selects whether the slot should exist at all.
type PresenceState string

const (
	StatePresent PresenceState = "present"
	StateAbsent  PresenceState = "absent"
)

// AppState is the requested lifecycle state of the slot process.
type AppState string

const (
	AppStateStarted   AppState = "started"
	AppStateStopped   AppState = "stopped"
	AppStateRestarted AppState = "restarted"
)

// SwapAction selects which half of the slot-swap workflow to perform.
type SwapAction string

const (
	SwapActionSwap    SwapAction = "swap"
	SwapActionPreview SwapAction = "preview"
	SwapActionReset   SwapAction = "reset"
)

// SwapRequest asks for a swap-related operation against a target slot.
// An empty TargetSlot means the production slot.
type SwapRequest struct {
	Action     SwapAction
	TargetSlot string
}

// DeploymentSource points the slot at a source-control repository.
type DeploymentSource struct {
	URL    string
	Branch string
}

// Framework is one entry of the runtime framework stack.
type Framework struct {
	Name    string
	Version string
	// Settings carries nested framework settings such as java_container
	// and java_container_version.
	Settings map[string]string
}

// ContainerSettings describes a container image deployment.
type ContainerSettings struct {
	// Name is the image reference without the registry host.
	Name                   string
	RegistryServerURL      string
	RegistryServerUser     string
	RegistryServerPassword string
}

// RuntimeSelection is either a framework list or a container descriptor,
// never both. The zero value selects no runtime and leaves the remote
// runtime configuration untouched.
type RuntimeSelection struct {
	frameworks []Framework
	container  *ContainerSettings
}

// SelectFrameworks builds a framework-based runtime selection. Java is
// mutually exclusive with every other framework, so a list longer than one
// that mentions java is rejected here regardless of the hosting OS.
func SelectFrameworks(frameworks []Framework) (RuntimeSelection, error) {
	if len(frameworks) == 0 {
		return RuntimeSelection{}, apperrors.NewValidation("framework list must not be empty")
	}

	if len(frameworks) > 1 {
		for _, fx := range frameworks {
			if fx.Name == "java" {
				return RuntimeSelection{}, apperrors.NewValidation(
					"java is mutually exclusive with other frameworks")
			}
		}
	}

	for _, fx := range frameworks {
		if fx.Name == "" || fx.Version == "" {
			return RuntimeSelection{}, apperrors.NewValidation(
				"framework entries require both name and version")
		}
	}

	return RuntimeSelection{frameworks: frameworks}, nil
}

// SelectContainer builds a container-based runtime selection.
func SelectContainer(settings ContainerSettings) (RuntimeSelection, error) {
	if settings.Name == "" {
		return RuntimeSelection{}, apperrors.NewValidation("container settings require an image name")
	}

	c := settings
	return RuntimeSelection{container: &c}, nil
}

// Frameworks returns the framework list, or nil for container and empty
// selections.
func (r RuntimeSelection) Frameworks() []Framework { return r.frameworks }

// Container returns the container descriptor and whether one was selected.
func (r RuntimeSelection) Container() (ContainerSettings, bool) {
	if r.container == nil {
		return ContainerSettings{}, false
	}
	return *r.container, true
}

// IsZero reports whether no runtime was selected.
func (r RuntimeSelection) IsZero() bool {
	return r.frameworks == nil && r.container == nil
}

// autoSwapKind distinguishes "not specified" from "explicitly disabled".
type autoSwapKind int

const (
	autoSwapUnset autoSwapKind = iota
	autoSwapDisabled
	autoSwapTarget
)

// AutoSwap is the tri-state auto-swap request: unset leaves the remote
// value untouched, disabled clears it, and a target sets it.
type AutoSwap struct {
	kind   autoSwapKind
	target string
}

// AutoSwapUnset leaves the remote auto-swap target untouched.
func AutoSwapUnset() AutoSwap { return AutoSwap{} }

// AutoSwapDisabled clears any remote auto-swap target.
func AutoSwapDisabled() AutoSwap { return AutoSwap{kind: autoSwapDisabled} }

// AutoSwapTo sets the auto-swap target slot.
func AutoSwapTo(slot string) AutoSwap {
	return AutoSwap{kind: autoSwapTarget, target: slot}
}

func (a AutoSwap) IsUnset() bool    { return a.kind == autoSwapUnset }
func (a AutoSwap) IsDisabled() bool { return a.kind == autoSwapDisabled }

// Target returns the requested auto-swap slot name and whether one was set.
func (a AutoSwap) Target() (string, bool) {
	return a.target, a.kind == autoSwapTarget
}

// Spec is the full desired state for one deployment slot, assembled from
// already-validated user input once per invocation.
type Spec struct {
	ResourceGroup string
	AppName       string
	SlotName      string
	Location      string

	State    PresenceState
	AppState AppState

	Runtime          RuntimeSelection
	AppSettings      map[string]string
	PurgeAppSettings bool
	StartupFile      string
	ScmType          string

	// ConfigurationSource names a sibling slot whose site configuration
	// seeds a newly created slot. Use the web app name for production.
	ConfigurationSource string

	DeploymentSource *DeploymentSource
	AutoSwap         AutoSwap
	Swap             *SwapRequest
	Tags             map[string]string
}

// TargetID returns the "app/slot" identity used in log and error messages.
func (s Spec) TargetID() string {
	return s.AppName + "/" + s.SlotName
}

// Validate checks the invocation-independent parts of the spec. OS-specific
// framework rules live in Normalize because they need the parent lookup.
func (s Spec) Validate() error {
	if s.ResourceGroup == "" || s.AppName == "" || s.SlotName == "" {
		return apperrors.NewValidation("resource group, app name and slot name are required")
	}

	switch s.State {
	case StatePresent, StateAbsent:
	default:
		return apperrors.NewValidation("state must be %q or %q", StatePresent, StateAbsent)
	}

	switch s.AppState {
	case AppStateStarted, AppStateStopped, AppStateRestarted:
	default:
		return apperrors.NewValidation("app_state must be one of started, stopped, restarted")
	}

	if s.Swap != nil {
		switch s.Swap.Action {
		case SwapActionSwap, SwapActionPreview, SwapActionReset:
		default:
			return apperrors.NewValidation("swap action must be one of swap, preview, reset")
		}
		if strings.EqualFold(s.Swap.TargetSlot, s.SlotName) && s.Swap.TargetSlot != "" {
			return apperrors.NewValidation("swap target must differ from the slot itself")
		}
	}

	return nil
}
