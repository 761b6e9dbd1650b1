// Package azure talks to the App Service management plane. The Gateway
// interface is the seam between the reconciliation core and the ARM SDK;
// the real implementation lives in client.go and fakes live with the
// orchestrator tests.
package azure

import (
	"context"

	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// SlotID identifies one deployment slot.
type SlotID struct {
	ResourceGroup string
	AppName       string
	SlotName      string
}

// String returns the "app/slot" identity used in log and error messages.
func (id SlotID) String() string {
	return id.AppName + "/" + id.SlotName
}

// WithSlot returns the identity of a sibling slot under the same app.
func (id SlotID) WithSlot(slot string) SlotID {
	return SlotID{ResourceGroup: id.ResourceGroup, AppName: id.AppName, SlotName: slot}
}

// AppRecord is the observed state of the parent web app.
type AppRecord struct {
	ID       string
	Location string
	// Linux reports whether the app is linux-hosted. It is nil when the
	// management plane did not resolve the hosting OS; callers must treat
	// that as a fatal precondition failure rather than guess a default.
	Linux *bool
}

// SlotRecord is the observed state of a deployment slot.
type SlotRecord struct {
	ID       string
	Name     string
	Location string
	// State is the running state as reported by ARM, "Running" or "Stopped".
	State string
	Tags  map[string]string
}

// SiteConfigRecord is the observed site configuration of a slot, limited to
// the fields the reconciler manages.
type SiteConfigRecord struct {
	LinuxFxVersion       string
	NetFrameworkVersion  string
	JavaVersion          string
	JavaContainer        string
	JavaContainerVersion string
	PhpVersion           string
	PythonVersion        string
	NodeVersion          string
	ScmType              string
	AppCommandLine       string
	// AutoSwapSlotName is nil when no auto-swap target is configured.
	AutoSwapSlotName *string
}

// SourceControlRecord is the observed source-control binding of a slot.
type SourceControlRecord struct {
	URL    string
	Branch string
}

// Envelope is the create-or-update payload for a slot. The remote API
// distinguishes create from update by existence; callers only decide
// whether to send it.
type Envelope struct {
	Location string
	Tags     map[string]string
	Config   slotcfg.SiteConfigPatch
	// AppSettings is the final desired settings map for the slot. For
	// updates this is the merge of existing and desired settings (or
	// desired alone after a purge). Non-nil means replace: an empty map
	// clears every remote setting, nil leaves them alone.
	AppSettings map[string]string
	// BaseConfig optionally seeds the site configuration from another
	// slot before the patch is applied, used when cloning configuration
	// at creation time.
	BaseConfig *SiteConfigRecord
}

// Gateway performs the management-plane calls for a named app and slot.
// Every call blocks until the operation reaches a terminal state; long
// running operations are polled to completion inside the implementation.
// Failures are returned as the errors-package taxonomy: ErrNotFound for
// missing resources, ErrRemote for everything else.
type Gateway interface {
	GetApplication(ctx context.Context, resourceGroup, appName string) (AppRecord, error)
	GetSlot(ctx context.Context, id SlotID) (SlotRecord, error)
	GetConfiguration(ctx context.Context, id SlotID) (SiteConfigRecord, error)
	ListAppSettings(ctx context.Context, id SlotID) (map[string]string, error)
	CreateOrUpdateSlot(ctx context.Context, id SlotID, envelope Envelope) (SlotRecord, error)
	DeleteSlot(ctx context.Context, id SlotID) error
	SetState(ctx context.Context, id SlotID, state slotcfg.AppState) error
	// Swap dispatches one of the six swap operations keyed by action and
	// target kind. An empty targetSlot means the production slot.
	Swap(ctx context.Context, id SlotID, action slotcfg.SwapAction, targetSlot string) error
	GetSourceControl(ctx context.Context, id SlotID) (SourceControlRecord, error)
	UpdateSourceControl(ctx context.Context, id SlotID, source slotcfg.DeploymentSource) error
}
