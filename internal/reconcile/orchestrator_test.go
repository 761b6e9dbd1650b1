package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/dc-tec/appslot-operator/internal/azure"
	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// fakeGateway is an in-memory Gateway that records every call and serves
// canned remote state.
type fakeGateway struct {
	app        azure.AppRecord
	appErr     error
	slot       azure.SlotRecord
	slotExists bool
	config     azure.SiteConfigRecord
	settings   map[string]string
	source     azure.SourceControlRecord

	createErr error
	deleteErr error
	stateErr  error
	swapErr   error

	calls []string

	lastEnvelope   azure.Envelope
	lastState      slotcfg.AppState
	lastSwapAction slotcfg.SwapAction
	lastSwapTarget string
	lastSource     slotcfg.DeploymentSource
}

func (f *fakeGateway) GetApplication(_ context.Context, _, appName string) (azure.AppRecord, error) {
	f.calls = append(f.calls, "get_application")
	if f.appErr != nil {
		return azure.AppRecord{}, f.appErr
	}
	return f.app, nil
}

func (f *fakeGateway) GetSlot(_ context.Context, id azure.SlotID) (azure.SlotRecord, error) {
	f.calls = append(f.calls, "get_slot")
	if !f.slotExists {
		return azure.SlotRecord{}, apperrors.NewNotFound("slot", id.String())
	}
	return f.slot, nil
}

func (f *fakeGateway) GetConfiguration(_ context.Context, id azure.SlotID) (azure.SiteConfigRecord, error) {
	f.calls = append(f.calls, "get_configuration:"+id.SlotName)
	return f.config, nil
}

func (f *fakeGateway) ListAppSettings(_ context.Context, _ azure.SlotID) (map[string]string, error) {
	f.calls = append(f.calls, "list_app_settings")
	return f.settings, nil
}

func (f *fakeGateway) CreateOrUpdateSlot(_ context.Context, id azure.SlotID, envelope azure.Envelope) (azure.SlotRecord, error) {
	f.calls = append(f.calls, "create_or_update_slot")
	if f.createErr != nil {
		return azure.SlotRecord{}, f.createErr
	}
	f.lastEnvelope = envelope
	return azure.SlotRecord{
		ID:    "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Web/sites/" + id.AppName + "/slots/" + id.SlotName,
		Name:  id.AppName + "/" + id.SlotName,
		State: "Running",
		Tags:  envelope.Tags,
	}, nil
}

func (f *fakeGateway) DeleteSlot(_ context.Context, _ azure.SlotID) error {
	f.calls = append(f.calls, "delete_slot")
	return f.deleteErr
}

func (f *fakeGateway) SetState(_ context.Context, _ azure.SlotID, state slotcfg.AppState) error {
	f.calls = append(f.calls, "set_state")
	f.lastState = state
	return f.stateErr
}

func (f *fakeGateway) Swap(_ context.Context, _ azure.SlotID, action slotcfg.SwapAction, target string) error {
	f.calls = append(f.calls, "swap")
	f.lastSwapAction = action
	f.lastSwapTarget = target
	return f.swapErr
}

func (f *fakeGateway) GetSourceControl(_ context.Context, _ azure.SlotID) (azure.SourceControlRecord, error) {
	f.calls = append(f.calls, "get_source_control")
	return f.source, nil
}

func (f *fakeGateway) UpdateSourceControl(_ context.Context, _ azure.SlotID, source slotcfg.DeploymentSource) error {
	f.calls = append(f.calls, "update_source_control")
	f.lastSource = source
	return nil
}

func (f *fakeGateway) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func baseSpec() slotcfg.Spec {
	return slotcfg.Spec{
		ResourceGroup: "rg",
		AppName:       "myapp",
		SlotName:      "staging",
		State:         slotcfg.StatePresent,
		AppState:      slotcfg.AppStateStarted,
	}
}

func windowsGateway() *fakeGateway {
	return &fakeGateway{
		app: azure.AppRecord{
			ID:       "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Web/sites/myapp",
			Location: "eastus",
			Linux:    ptr.To(false),
		},
	}
}

func newOrchestrator(gw azure.Gateway, opts Options) *Orchestrator {
	return NewOrchestrator(gw, logr.Discard(), opts)
}

func TestReconcileMissingParentIsFatal(t *testing.T) {
	gw := windowsGateway()
	gw.appErr = apperrors.NewNotFound("web app", "myapp")

	_, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), baseSpec())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, gw.called("get_slot"))
}

func TestReconcileUnresolvedHostingOSIsFatal(t *testing.T) {
	gw := windowsGateway()
	gw.app.Linux = nil

	_, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), baseSpec())
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
}

func TestReconcileCreatesMissingSlot(t *testing.T) {
	gw := windowsGateway()
	spec := baseSpec()
	spec.AppSettings = map[string]string{"KEY": "value"}
	spec.Tags = map[string]string{"env": "staging"}

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Contains(t, result.ID, "slots/staging")
	assert.True(t, gw.called("create_or_update_slot"))
	assert.Equal(t, "eastus", gw.lastEnvelope.Location, "location defaults from the parent app")
	assert.Equal(t, "value", gw.lastEnvelope.AppSettings["KEY"])
	assert.Equal(t, "staging", gw.lastEnvelope.Tags["env"])
}

func TestReconcileCreateClonesConfigurationSource(t *testing.T) {
	gw := windowsGateway()
	gw.config = azure.SiteConfigRecord{PhpVersion: "7.0"}
	spec := baseSpec()
	spec.ConfigurationSource = "canary"

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.True(t, gw.called("get_configuration:canary"))
	require.NotNil(t, gw.lastEnvelope.BaseConfig)
	assert.Equal(t, "7.0", gw.lastEnvelope.BaseConfig.PhpVersion)
}

func TestReconcileNoOpWhenConverged(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running", Tags: map[string]string{"env": "staging"}}
	gw.config = azure.SiteConfigRecord{PhpVersion: "7.0"}
	gw.settings = map[string]string{"KEY": "value"}

	spec := baseSpec()
	spec.Runtime = mustFrameworks(t, slotcfg.Framework{Name: "php", Version: "7.0"})
	spec.AppSettings = map[string]string{"KEY": "value"}
	spec.Tags = map[string]string{"env": "staging"}

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, result.ID)
	assert.False(t, gw.called("create_or_update_slot"))
	assert.False(t, gw.called("set_state"))
}

func TestReconcileUpdatesOnConfigDrift(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}
	gw.config = azure.SiteConfigRecord{PhpVersion: "5.6"}

	spec := baseSpec()
	spec.Runtime = mustFrameworks(t, slotcfg.Framework{Name: "php", Version: "7.0"})

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.NotEmpty(t, result.ID)
	assert.True(t, gw.called("create_or_update_slot"))
}

func TestReconcileMergesSettingsOverExisting(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}
	gw.settings = map[string]string{"OLD": "kept", "KEY": "stale"}

	spec := baseSpec()
	spec.AppSettings = map[string]string{"KEY": "fresh"}

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, "kept", gw.lastEnvelope.AppSettings["OLD"])
	assert.Equal(t, "fresh", gw.lastEnvelope.AppSettings["KEY"])
}

func TestReconcilePurgeClearsExistingSettings(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}
	gw.settings = map[string]string{"OLD": "dropped"}

	spec := baseSpec()
	spec.PurgeAppSettings = true
	spec.AppSettings = map[string]string{"KEY": "fresh"}

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.NotContains(t, gw.lastEnvelope.AppSettings, "OLD")
	assert.Equal(t, "fresh", gw.lastEnvelope.AppSettings["KEY"])
}

func TestReconcilePurgeWithEmptyDesiredClearsAll(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}
	gw.settings = map[string]string{"OLD": "dropped"}

	spec := baseSpec()
	spec.PurgeAppSettings = true

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	// The full-replace contract keys off a non-nil map: only an empty,
	// non-nil map makes the gateway clear the remote settings.
	require.NotNil(t, gw.lastEnvelope.AppSettings)
	assert.Empty(t, gw.lastEnvelope.AppSettings)
}

func TestReconcileAbsent(t *testing.T) {
	t.Run("missing slot is a no-op", func(t *testing.T) {
		gw := windowsGateway()
		spec := baseSpec()
		spec.State = slotcfg.StateAbsent

		result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.False(t, gw.called("delete_slot"))
	})

	t.Run("existing slot is deleted", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		spec := baseSpec()
		spec.State = slotcfg.StateAbsent

		result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.True(t, gw.called("delete_slot"))
	})

	t.Run("concurrent deletion is a no-op", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		gw.deleteErr = apperrors.NewNotFound("slot", "myapp/staging")
		spec := baseSpec()
		spec.State = slotcfg.StateAbsent

		result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.True(t, result.Changed)
	})
}

func TestReconcileLifecycle(t *testing.T) {
	tests := []struct {
		name         string
		appState     slotcfg.AppState
		currentState string
		wantCall     bool
		wantState    string
	}{
		{"started against running slot", slotcfg.AppStateStarted, "Running", false, "Running"},
		{"started against stopped slot", slotcfg.AppStateStarted, "Stopped", true, "Running"},
		{"stopped against stopped slot", slotcfg.AppStateStopped, "Stopped", false, "Stopped"},
		{"stopped against running slot", slotcfg.AppStateStopped, "Running", true, "Stopped"},
		{"restarted is never idempotent", slotcfg.AppStateRestarted, "Running", true, "Running"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := windowsGateway()
			gw.slotExists = true
			gw.slot = azure.SlotRecord{State: tt.currentState}

			spec := baseSpec()
			spec.AppState = tt.appState

			result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCall, result.Changed)
			assert.Equal(t, tt.wantCall, gw.called("set_state"))
			assert.Equal(t, tt.wantState, result.State)
			if tt.wantCall {
				assert.Equal(t, tt.appState, gw.lastState)
			}
		})
	}
}

func TestReconcileRestartedTwiceStillChanges(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}

	spec := baseSpec()
	spec.AppState = slotcfg.AppStateRestarted

	o := newOrchestrator(gw, Options{})
	for i := 0; i < 2; i++ {
		result, err := o.Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.True(t, result.Changed)
	}
}

func TestReconcileSwapDispatch(t *testing.T) {
	tests := []struct {
		name       string
		action     slotcfg.SwapAction
		targetSlot string
	}{
		{"swap with production", slotcfg.SwapActionSwap, ""},
		{"swap with named slot", slotcfg.SwapActionSwap, "canary"},
		{"preview with production", slotcfg.SwapActionPreview, ""},
		{"preview with named slot", slotcfg.SwapActionPreview, "canary"},
		{"reset with production", slotcfg.SwapActionReset, ""},
		{"reset with named slot", slotcfg.SwapActionReset, "canary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := windowsGateway()
			gw.slotExists = true
			gw.slot = azure.SlotRecord{State: "Running"}

			spec := baseSpec()
			spec.Swap = &slotcfg.SwapRequest{Action: tt.action, TargetSlot: tt.targetSlot}

			result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
			require.NoError(t, err)

			assert.True(t, result.Changed, "a swap request is always a change")
			assert.True(t, gw.called("swap"))
			assert.Equal(t, tt.action, gw.lastSwapAction)
			assert.Equal(t, tt.targetSlot, gw.lastSwapTarget)
		})
	}
}

func TestReconcileSourceControl(t *testing.T) {
	gw := windowsGateway()
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running"}
	gw.source = azure.SourceControlRecord{URL: "https://github.com/org/repo", Branch: "main"}

	spec := baseSpec()
	spec.DeploymentSource = &slotcfg.DeploymentSource{URL: "https://github.com/org/repo", Branch: "main"}

	result, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.False(t, gw.called("update_source_control"))

	spec.DeploymentSource.Branch = "develop"
	result, err = newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.True(t, gw.called("update_source_control"))
	assert.Equal(t, "develop", gw.lastSource.Branch)
}

func TestReconcileIdempotentSecondRun(t *testing.T) {
	gw := windowsGateway()
	spec := baseSpec()
	spec.Runtime = mustFrameworks(t, slotcfg.Framework{Name: "php", Version: "7.0"})
	spec.AppSettings = map[string]string{"KEY": "value"}

	o := newOrchestrator(gw, Options{})

	first, err := o.Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	// Feed the committed state back as the observed state.
	gw.slotExists = true
	gw.slot = azure.SlotRecord{State: "Running", Tags: gw.lastEnvelope.Tags}
	gw.config = azure.SiteConfigRecord{PhpVersion: "7.0"}
	gw.settings = gw.lastEnvelope.AppSettings

	second, err := o.Reconcile(context.Background(), spec)
	require.NoError(t, err)
	assert.False(t, second.Changed)
}

func TestReconcileCheckMode(t *testing.T) {
	t.Run("create short-circuits", func(t *testing.T) {
		gw := windowsGateway()

		result, err := newOrchestrator(gw, Options{CheckMode: true}).Reconcile(context.Background(), baseSpec())
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.False(t, gw.called("create_or_update_slot"))
	})

	t.Run("delete short-circuits", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		spec := baseSpec()
		spec.State = slotcfg.StateAbsent

		result, err := newOrchestrator(gw, Options{CheckMode: true}).Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.False(t, gw.called("delete_slot"))
	})

	t.Run("lifecycle gate applies even with no config change", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		gw.slot = azure.SlotRecord{State: "Stopped"}

		result, err := newOrchestrator(gw, Options{CheckMode: true}).Reconcile(context.Background(), baseSpec())
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.False(t, gw.called("set_state"))
	})

	t.Run("swap gate applies even with no config change", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		gw.slot = azure.SlotRecord{State: "Running"}
		spec := baseSpec()
		spec.Swap = &slotcfg.SwapRequest{Action: slotcfg.SwapActionSwap}

		result, err := newOrchestrator(gw, Options{CheckMode: true}).Reconcile(context.Background(), spec)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.False(t, gw.called("swap"))
	})

	t.Run("converged slot reports no change", func(t *testing.T) {
		gw := windowsGateway()
		gw.slotExists = true
		gw.slot = azure.SlotRecord{State: "Running"}

		result, err := newOrchestrator(gw, Options{CheckMode: true}).Reconcile(context.Background(), baseSpec())
		require.NoError(t, err)
		assert.False(t, result.Changed)
	})
}

func TestReconcileValidationBeforeRemoteCalls(t *testing.T) {
	gw := windowsGateway()
	spec := baseSpec()
	spec.State = "paused"

	_, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, gw.calls, "validation failures must precede any remote call")
}

func TestReconcileRemoteFaultIsFatal(t *testing.T) {
	gw := windowsGateway()
	gw.createErr = apperrors.WrapRemote("create_or_update_slot", "myapp/staging", errors.New("boom"))

	_, err := newOrchestrator(gw, Options{}).Reconcile(context.Background(), baseSpec())
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.False(t, gw.called("set_state"), "no further steps after a fatal remote fault")
}

func TestUpdateReason(t *testing.T) {
	assert.Equal(t, "", updateReason(false, false, false))
	assert.Equal(t, "tags", updateReason(true, false, false))
	assert.Equal(t, "config,settings", updateReason(false, true, true))
	assert.Equal(t, "tags,config,settings", updateReason(true, true, true))
}

func mustFrameworks(t *testing.T, frameworks ...slotcfg.Framework) slotcfg.RuntimeSelection {
	t.Helper()
	sel, err := slotcfg.SelectFrameworks(frameworks)
	require.NoError(t, err)
	return sel
}
