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
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// WebAppSlotFinalizer ensures remote cleanup runs before a WebAppSlot
	// is fully deleted.
	WebAppSlotFinalizer = "appservice.dc-tec.io/webappslot-finalizer"
)

// SlotPresence selects whether the remote slot should exist.
// +kubebuilder:validation:Enum=present;absent
type SlotPresence string

const (
	SlotPresent SlotPresence = "present"
	SlotAbsent  SlotPresence = "absent"
)

// SlotRunState is the requested lifecycle state of the slot process.
// +kubebuilder:validation:Enum=started;stopped;restarted
type SlotRunState string

const (
	SlotStarted   SlotRunState = "started"
	SlotStopped   SlotRunState = "stopped"
	SlotRestarted SlotRunState = "restarted"
)

// SwapActionType selects which half of the slot-swap workflow to perform.
// +kubebuilder:validation:Enum=swap;preview;reset
type SwapActionType string

const (
	SwapActionSwap    SwapActionType = "swap"
	SwapActionPreview SwapActionType = "preview"
	SwapActionReset   SwapActionType = "reset"
)

// DeletionPolicy defines what happens to the remote slot when the
// WebAppSlot resource is deleted.
// +kubebuilder:validation:Enum=Retain;Delete
type DeletionPolicy string

const (
	// DeletionPolicyRetain leaves the remote slot in place.
	DeletionPolicyRetain DeletionPolicy = "Retain"
	// DeletionPolicyDelete removes the remote slot.
	DeletionPolicyDelete DeletionPolicy = "Delete"
)

// SlotPhase is a high-level summary of reconciliation state.
// +kubebuilder:validation:Enum=Pending;Ready;Failed
type SlotPhase string

const (
	SlotPhasePending SlotPhase = "Pending"
	SlotPhaseReady   SlotPhase = "Ready"
	SlotPhaseFailed  SlotPhase = "Failed"
)

// ConditionType identifies a specific aspect of slot health or lifecycle.
type ConditionType string

const (
	// ConditionReady indicates the remote slot matches the desired state.
	ConditionReady ConditionType = "Ready"
	// ConditionSynced indicates the last reconciliation pass completed
	// without remote faults.
	ConditionSynced ConditionType = "Synced"
	// ConditionDegraded indicates the desired configuration was rejected
	// or a remote fault requires attention.
	ConditionDegraded ConditionType = "Degraded"
)

// FrameworkSpec is one entry of the runtime framework stack.
type FrameworkSpec struct {
	// Name of the framework. Supported names differ between windows web
	// apps (net_framework, php, python, node, java) and linux web apps
	// (ruby, php, dotnetcore, node, java).
	// +kubebuilder:validation:Enum=java;net_framework;php;python;ruby;dotnetcore;node
	Name string `json:"name"`
	// Version of the framework, e.g. "v4.0" for net_framework or "7.0" for php.
	// +kubebuilder:validation:MinLength=1
	Version string `json:"version"`
	// Settings carries nested framework settings such as java_container
	// and java_container_version.
	// +optional
	Settings map[string]string `json:"settings,omitempty"`
}

// ContainerSettingsSpec describes a container image deployment.
type ContainerSettingsSpec struct {
	// Name is the image reference without the registry host, e.g. "ubuntu"
	// or "org/app:1.2".
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`
	// +optional
	RegistryServerURL string `json:"registryServerURL,omitempty"`
	// +optional
	RegistryServerUser string `json:"registryServerUser,omitempty"`
	// RegistryServerPasswordSecretRef references the secret key holding
	// the registry password. The password never appears in the spec.
	// +optional
	RegistryServerPasswordSecretRef *corev1.SecretKeySelector `json:"registryServerPasswordSecretRef,omitempty"`
}

// DeploymentSourceSpec points the slot at a source-control repository.
type DeploymentSourceSpec struct {
	// +kubebuilder:validation:MinLength=1
	URL string `json:"url"`
	// +optional
	Branch string `json:"branch,omitempty"`
}

// AutoSwapSpec configures the slot's auto-swap target. Omitting the whole
// block leaves the remote value untouched; Disabled clears it.
type AutoSwapSpec struct {
	// +optional
	SlotName string `json:"slotName,omitempty"`
	// +optional
	Disabled bool `json:"disabled,omitempty"`
}

// SwapSpec requests a swap-related operation against a target slot.
type SwapSpec struct {
	Action SwapActionType `json:"action"`
	// TargetSlot names the slot to swap with. Empty means the production
	// slot.
	// +optional
	TargetSlot string `json:"targetSlot,omitempty"`
}

// WebAppSlotSpec defines the desired state of an App Service deployment slot.
type WebAppSlotSpec struct {
	// ResourceGroup is the Azure resource group of the parent web app.
	// +kubebuilder:validation:MinLength=1
	ResourceGroup string `json:"resourceGroup"`
	// AppName is the parent web app this slot belongs to.
	// +kubebuilder:validation:MinLength=1
	AppName string `json:"appName"`
	// SlotName is the deployment slot name.
	// +kubebuilder:validation:MinLength=1
	SlotName string `json:"slotName"`
	// Location defaults to the parent web app's location.
	// +optional
	Location string `json:"location,omitempty"`

	// +kubebuilder:default=present
	// +optional
	State SlotPresence `json:"state,omitempty"`
	// +kubebuilder:default=started
	// +optional
	AppState SlotRunState `json:"appState,omitempty"`

	// Frameworks is the runtime framework stack. Mutually exclusive with
	// ContainerSettings.
	// +optional
	Frameworks []FrameworkSpec `json:"frameworks,omitempty"`
	// +optional
	ContainerSettings *ContainerSettingsSpec `json:"containerSettings,omitempty"`

	// +optional
	AppSettings map[string]string `json:"appSettings,omitempty"`
	// PurgeAppSettings clears all existing remote settings before the
	// desired ones are applied.
	// +optional
	PurgeAppSettings bool `json:"purgeAppSettings,omitempty"`

	// StartupFile sets the app command line on linux-hosted slots.
	// +optional
	StartupFile string `json:"startupFile,omitempty"`
	// ScmType selects the source-control management type, e.g. "GitHub"
	// or "LocalGit".
	// +optional
	ScmType string `json:"scmType,omitempty"`
	// ConfigurationSource names a sibling slot whose site configuration
	// seeds this slot at creation time.
	// +optional
	ConfigurationSource string `json:"configurationSource,omitempty"`

	// +optional
	DeploymentSource *DeploymentSourceSpec `json:"deploymentSource,omitempty"`
	// +optional
	AutoSwap *AutoSwapSpec `json:"autoSwap,omitempty"`
	// +optional
	Swap *SwapSpec `json:"swap,omitempty"`
	// +optional
	Tags map[string]string `json:"tags,omitempty"`

	// +kubebuilder:default=Retain
	// +optional
	DeletionPolicy DeletionPolicy `json:"deletionPolicy,omitempty"`
}

// WebAppSlotStatus defines the observed state of a WebAppSlot.
type WebAppSlotStatus struct {
	// +optional
	Phase SlotPhase `json:"phase,omitempty"`
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// ObservedGeneration is the spec generation last acted upon.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
	// SlotID is the ARM resource id of the slot after a successful
	// create or update.
	// +optional
	SlotID string `json:"slotID,omitempty"`
	// LastObservedState is the running state reported by the management
	// plane at the end of the last invocation, "Running" or "Stopped".
	// +optional
	LastObservedState string `json:"lastObservedState,omitempty"`
	// LastReconcileChanged reports whether the last completed invocation
	// performed any remote mutation.
	// +optional
	LastReconcileChanged bool `json:"lastReconcileChanged,omitempty"`
	// LastError carries the terminal failure of the last invocation, if any.
	// +optional
	LastError string `json:"lastError,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="App",type=string,JSONPath=`.spec.appName`
// +kubebuilder:printcolumn:name="Slot",type=string,JSONPath=`.spec.slotName`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// WebAppSlot is the Schema for the webappslots API.
type WebAppSlot struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   WebAppSlotSpec   `json:"spec,omitempty"`
	Status WebAppSlotStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// WebAppSlotList contains a list of WebAppSlot.
type WebAppSlotList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []WebAppSlot `json:"items"`
}

func init() {
	SchemeBuilder.Register(&WebAppSlot{}, &WebAppSlotList{})
}
