// Package reconcile converges the desired state of one deployment slot
// against its live state in the App Service management plane. One
// Orchestrator invocation performs one synchronous pass: fresh lookup,
// diff, then the minimal sequence of gateway calls.
package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/go-logr/logr"

	"github.com/dc-tec/appslot-operator/internal/azure"
	"github.com/dc-tec/appslot-operator/internal/diff"
	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/logging"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// Options tunes orchestrator behavior.
type Options struct {
	// CheckMode short-circuits the invocation at the first point where a
	// change is determined necessary: the result reports changed=true and
	// no remote mutation is performed. The gate applies at every mutation
	// point, not only the first.
	CheckMode bool
}

// Orchestrator sequences gateway calls for a single slot. It holds no
// state across invocations; every Reconcile starts from a fresh lookup.
type Orchestrator struct {
	gateway azure.Gateway
	logger  logr.Logger
	opts    Options
}

// NewOrchestrator builds an orchestrator around the given gateway.
func NewOrchestrator(gateway azure.Gateway, logger logr.Logger, opts Options) *Orchestrator {
	return &Orchestrator{gateway: gateway, logger: logger, opts: opts}
}

// Reconcile converges the slot named by spec. Remote failures from any step
// are fatal for the invocation; partial progress is surfaced as a failure
// after whatever calls already committed, with no compensating rollback.
func (o *Orchestrator) Reconcile(ctx context.Context, spec slotcfg.Spec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	id := azure.SlotID{
		ResourceGroup: spec.ResourceGroup,
		AppName:       spec.AppName,
		SlotName:      spec.SlotName,
	}

	// The slot cannot exist without its parent; a missing parent is fatal.
	app, err := o.gateway.GetApplication(ctx, spec.ResourceGroup, spec.AppName)
	if err != nil {
		return Result{}, err
	}

	if app.Linux == nil {
		return Result{}, apperrors.WrapRemote("get_application", id.String(),
			errors.New("web app does not report its hosting OS"))
	}
	parentIsLinux := *app.Linux

	location := spec.Location
	if location == "" {
		location = app.Location
	}

	observed, err := o.gateway.GetSlot(ctx, id)
	exists := true
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return Result{}, err
		}
		exists = false
	}

	if spec.State == slotcfg.StateAbsent {
		return o.ensureAbsent(ctx, id, exists)
	}

	result, current, err := o.ensurePresent(ctx, id, spec, observed, exists, parentIsLinux, location)
	result.State = current.State
	if err != nil || (o.opts.CheckMode && result.Changed) {
		return result, err
	}

	result, err = o.adjustSourceControl(ctx, id, spec, result)
	if err != nil || (o.opts.CheckMode && result.Changed) {
		return result, err
	}

	result, err = o.adjustLifecycle(ctx, id, spec, current, result)
	if err != nil || (o.opts.CheckMode && result.Changed) {
		return result, err
	}

	return o.adjustSwap(ctx, id, spec, result)
}

func (o *Orchestrator) ensureAbsent(ctx context.Context, id azure.SlotID, exists bool) (Result, error) {
	if !exists {
		return Result{}, nil
	}

	if o.opts.CheckMode {
		return Result{Changed: true}, nil
	}

	logging.LogAuditEvent(o.logger, "delete_slot", map[string]string{"slot": id.String()})

	if err := o.gateway.DeleteSlot(ctx, id); err != nil {
		// A 404 here means another actor got there first; deletion of a
		// missing slot is a no-op, not an error.
		if apperrors.IsNotFound(err) {
			return Result{Changed: true}, nil
		}
		return Result{}, err
	}

	return Result{Changed: true}, nil
}

// ensurePresent handles creation and configuration convergence. It returns
// the running result and the slot record whose state feeds the lifecycle
// adjustment: the freshly created or updated record when a config action
// occurred, otherwise the originally observed one.
func (o *Orchestrator) ensurePresent(
	ctx context.Context,
	id azure.SlotID,
	spec slotcfg.Spec,
	observed azure.SlotRecord,
	exists bool,
	parentIsLinux bool,
	location string,
) (Result, azure.SlotRecord, error) {
	patch, err := slotcfg.Normalize(spec, parentIsLinux)
	if err != nil {
		return Result{}, azure.SlotRecord{}, err
	}

	if !exists {
		return o.createSlot(ctx, id, spec, patch, location)
	}

	mergedTags, tagsChanged := diff.MergeTags(observed.Tags, spec.Tags)

	observedConfig, err := o.gateway.GetConfiguration(ctx, id)
	if err != nil {
		return Result{}, azure.SlotRecord{}, err
	}
	configChanged := diff.NeedsConfigUpdate(patch, observedConfig)

	existingSettings, err := o.gateway.ListAppSettings(ctx, id)
	if err != nil {
		return Result{}, azure.SlotRecord{}, err
	}
	settingsChanged := diff.NeedsSettingsUpdate(patch.AppSettings, spec.PurgeAppSettings, existingSettings)

	if !tagsChanged && !configChanged && !settingsChanged {
		return Result{ID: observed.ID}, observed, nil
	}

	if o.opts.CheckMode {
		return Result{Changed: true, ID: observed.ID}, observed, nil
	}

	// Purge clears the existing settings before the desired ones are
	// re-applied on top; otherwise desired settings merge over existing.
	finalSettings := make(map[string]string)
	if !spec.PurgeAppSettings {
		for key, value := range existingSettings {
			finalSettings[key] = value
		}
	}
	for key, value := range patch.AppSettings {
		finalSettings[key] = value
	}

	logging.LogAuditEvent(o.logger, "create_or_update_slot", map[string]string{
		"slot":   id.String(),
		"reason": updateReason(tagsChanged, configChanged, settingsChanged),
	})

	updated, err := o.gateway.CreateOrUpdateSlot(ctx, id, azure.Envelope{
		Location:    location,
		Tags:        mergedTags,
		Config:      patch,
		AppSettings: finalSettings,
	})
	if err != nil {
		return Result{}, azure.SlotRecord{}, err
	}

	return Result{Changed: true, ID: updated.ID}, updated, nil
}

func (o *Orchestrator) createSlot(
	ctx context.Context,
	id azure.SlotID,
	spec slotcfg.Spec,
	patch slotcfg.SiteConfigPatch,
	location string,
) (Result, azure.SlotRecord, error) {
	if o.opts.CheckMode {
		return Result{Changed: true}, azure.SlotRecord{}, nil
	}

	envelope := azure.Envelope{
		Location:    location,
		Tags:        spec.Tags,
		Config:      patch,
		AppSettings: patch.AppSettings,
	}

	if spec.ConfigurationSource != "" {
		base, err := o.gateway.GetConfiguration(ctx, id.WithSlot(spec.ConfigurationSource))
		if err != nil {
			return Result{}, azure.SlotRecord{}, err
		}
		envelope.BaseConfig = &base
	}

	logging.LogAuditEvent(o.logger, "create_or_update_slot", map[string]string{
		"slot":   id.String(),
		"reason": "create",
	})

	created, err := o.gateway.CreateOrUpdateSlot(ctx, id, envelope)
	if err != nil {
		return Result{}, azure.SlotRecord{}, err
	}

	return Result{Changed: true, ID: created.ID}, created, nil
}

func (o *Orchestrator) adjustSourceControl(ctx context.Context, id azure.SlotID, spec slotcfg.Spec, result Result) (Result, error) {
	if spec.DeploymentSource == nil {
		return result, nil
	}

	observed, err := o.gateway.GetSourceControl(ctx, id)
	if err != nil {
		return result, err
	}

	if !diff.NeedsSourceControlUpdate(spec.DeploymentSource, observed) {
		return result, nil
	}

	result.Changed = true
	if o.opts.CheckMode {
		return result, nil
	}

	logging.LogAuditEvent(o.logger, "update_source_control", map[string]string{
		"slot":   id.String(),
		"url":    spec.DeploymentSource.URL,
		"branch": spec.DeploymentSource.Branch,
	})

	if err := o.gateway.UpdateSourceControl(ctx, id, *spec.DeploymentSource); err != nil {
		return result, err
	}

	return result, nil
}

// adjustLifecycle compares the slot's running state against the requested
// one. "stopped" and "started" are idempotent against a matching observed
// state; "restarted" always issues the restart call.
func (o *Orchestrator) adjustLifecycle(ctx context.Context, id azure.SlotID, spec slotcfg.Spec, current azure.SlotRecord, result Result) (Result, error) {
	needed := false
	switch spec.AppState {
	case slotcfg.AppStateStopped:
		needed = current.State != "Stopped"
	case slotcfg.AppStateStarted:
		needed = current.State != "Running"
	case slotcfg.AppStateRestarted:
		needed = true
	}

	if !needed {
		return result, nil
	}

	result.Changed = true
	if o.opts.CheckMode {
		return result, nil
	}

	logging.LogAuditEvent(o.logger, "set_slot_state", map[string]string{
		"slot":  id.String(),
		"state": string(spec.AppState),
	})

	if err := o.gateway.SetState(ctx, id, spec.AppState); err != nil {
		return result, err
	}

	// The reported state is derived from the accepted request, not re-read
	// from the management plane: a successful stop leaves the slot Stopped,
	// a successful start or restart leaves it Running.
	if spec.AppState == slotcfg.AppStateStopped {
		result.State = "Stopped"
	} else {
		result.State = "Running"
	}

	return result, nil
}

// adjustSwap dispatches a requested swap operation. Swaps carry no
// idempotence detection: every invocation with a swap request is a change.
func (o *Orchestrator) adjustSwap(ctx context.Context, id azure.SlotID, spec slotcfg.Spec, result Result) (Result, error) {
	if spec.Swap == nil {
		return result, nil
	}

	result.Changed = true
	if o.opts.CheckMode {
		return result, nil
	}

	target := spec.Swap.TargetSlot
	targetLabel := target
	if targetLabel == "" {
		targetLabel = "production"
	}

	logging.LogAuditEvent(o.logger, "swap", map[string]string{
		"slot":   id.String(),
		"action": string(spec.Swap.Action),
		"target": targetLabel,
	})

	if err := o.gateway.Swap(ctx, id, spec.Swap.Action, target); err != nil {
		return result, err
	}

	return result, nil
}

func updateReason(tags, config, settings bool) string {
	parts := make([]string, 0, 3)
	if tags {
		parts = append(parts, "tags")
	}
	if config {
		parts = append(parts, "config")
	}
	if settings {
		parts = append(parts, "settings")
	}
	return strings.Join(parts, ",")
}
