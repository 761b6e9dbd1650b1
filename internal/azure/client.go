package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	armappservice "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v4"
	"github.com/go-logr/logr"
	"k8s.io/utils/ptr"

	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// Client implements Gateway on top of the ARM App Service SDK.
type Client struct {
	webApps *armappservice.WebAppsClient
	logger  logr.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient builds a Gateway for the given subscription using an explicit
// token credential.
func NewClient(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions, logger logr.Logger) (*Client, error) {
	webApps, err := armappservice.NewWebAppsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create web apps client: %w", err)
	}

	return &Client{webApps: webApps, logger: logger}, nil
}

// NewDefaultClient builds a Gateway using the default Azure credential
// chain (environment, workload identity, managed identity, CLI).
func NewDefaultClient(subscriptionID string, logger logr.Logger) (*Client, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire Azure credential: %w", err)
	}

	return NewClient(subscriptionID, credential, nil, logger)
}

func (c *Client) GetApplication(ctx context.Context, resourceGroup, appName string) (AppRecord, error) {
	resp, err := c.webApps.Get(ctx, resourceGroup, appName, nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return AppRecord{}, apperrors.NewNotFound("web app", appName)
		}
		return AppRecord{}, apperrors.WrapRemote("get_application", appName, err)
	}

	record := AppRecord{
		ID:       ptr.Deref(resp.ID, ""),
		Location: ptr.Deref(resp.Location, ""),
	}
	if resp.Properties != nil {
		record.Linux = resp.Properties.Reserved
	}

	return record, nil
}

func (c *Client) GetSlot(ctx context.Context, id SlotID) (SlotRecord, error) {
	resp, err := c.webApps.GetSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return SlotRecord{}, apperrors.NewNotFound("slot", id.String())
		}
		return SlotRecord{}, apperrors.WrapRemote("get_slot", id.String(), err)
	}

	return slotRecordFromSite(resp.Site), nil
}

func (c *Client) GetConfiguration(ctx context.Context, id SlotID) (SiteConfigRecord, error) {
	resp, err := c.webApps.GetConfigurationSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return SiteConfigRecord{}, apperrors.NewNotFound("slot configuration", id.String())
		}
		return SiteConfigRecord{}, apperrors.WrapRemote("get_slot_configuration", id.String(), err)
	}

	return configRecordFromSiteConfig(resp.Properties), nil
}

func (c *Client) ListAppSettings(ctx context.Context, id SlotID) (map[string]string, error) {
	resp, err := c.webApps.ListApplicationSettingsSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	if err != nil {
		return nil, apperrors.WrapRemote("list_slot_settings", id.String(), err)
	}

	settings := make(map[string]string, len(resp.Properties))
	for key, value := range resp.Properties {
		settings[key] = ptr.Deref(value, "")
	}

	return settings, nil
}

func (c *Client) CreateOrUpdateSlot(ctx context.Context, id SlotID, envelope Envelope) (SlotRecord, error) {
	site := armappservice.Site{
		Location: ptr.To(envelope.Location),
		Properties: &armappservice.SiteProperties{
			SiteConfig: buildSiteConfig(envelope),
		},
	}
	if len(envelope.Tags) > 0 {
		site.Tags = make(map[string]*string, len(envelope.Tags))
		for key, value := range envelope.Tags {
			site.Tags[key] = ptr.To(value)
		}
	}

	poller, err := c.webApps.BeginCreateOrUpdateSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, site, nil)
	if err != nil {
		return SlotRecord{}, apperrors.WrapRemote("create_or_update_slot", id.String(), err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return SlotRecord{}, apperrors.WrapRemote("create_or_update_slot", id.String(), err)
	}

	c.logger.V(1).Info("slot create-or-update completed", "slot", id.String())

	return slotRecordFromSite(resp.Site), nil
}

func (c *Client) DeleteSlot(ctx context.Context, id SlotID) error {
	if _, err := c.webApps.DeleteSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("slot", id.String())
		}
		return apperrors.WrapRemote("delete_slot", id.String(), err)
	}

	return nil
}

func (c *Client) SetState(ctx context.Context, id SlotID, state slotcfg.AppState) error {
	var err error
	switch state {
	case slotcfg.AppStateStarted:
		_, err = c.webApps.StartSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	case slotcfg.AppStateStopped:
		_, err = c.webApps.StopSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	case slotcfg.AppStateRestarted:
		_, err = c.webApps.RestartSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	default:
		return apperrors.NewValidation("unknown lifecycle state %q", state)
	}

	if err != nil {
		return apperrors.WrapRemote("set_slot_state", id.String(), err)
	}

	return nil
}

func (c *Client) Swap(ctx context.Context, id SlotID, action slotcfg.SwapAction, targetSlot string) error {
	entity := armappservice.CsmSlotEntity{PreserveVnet: ptr.To(true)}

	var err error
	switch {
	case action == slotcfg.SwapActionSwap && targetSlot == "":
		entity.TargetSlot = ptr.To(id.SlotName)
		poller, beginErr := c.webApps.BeginSwapSlotWithProduction(ctx, id.ResourceGroup, id.AppName, entity, nil)
		err = beginErr
		if err == nil {
			_, err = poller.PollUntilDone(ctx, nil)
		}
	case action == slotcfg.SwapActionSwap:
		entity.TargetSlot = ptr.To(targetSlot)
		poller, beginErr := c.webApps.BeginSwapSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, entity, nil)
		err = beginErr
		if err == nil {
			_, err = poller.PollUntilDone(ctx, nil)
		}
	case action == slotcfg.SwapActionPreview && targetSlot == "":
		entity.TargetSlot = ptr.To(id.SlotName)
		_, err = c.webApps.ApplySlotConfigToProduction(ctx, id.ResourceGroup, id.AppName, entity, nil)
	case action == slotcfg.SwapActionPreview:
		entity.TargetSlot = ptr.To(targetSlot)
		_, err = c.webApps.ApplySlotConfigurationSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, entity, nil)
	case action == slotcfg.SwapActionReset && targetSlot == "":
		_, err = c.webApps.ResetProductionSlotConfig(ctx, id.ResourceGroup, id.AppName, nil)
	case action == slotcfg.SwapActionReset:
		_, err = c.webApps.ResetSlotConfigurationSlot(ctx, id.ResourceGroup, id.AppName, targetSlot, nil)
	default:
		return apperrors.NewValidation("unknown swap action %q", action)
	}

	if err != nil {
		return apperrors.WrapRemote("swap", id.String(), err)
	}

	return nil
}

func (c *Client) GetSourceControl(ctx context.Context, id SlotID) (SourceControlRecord, error) {
	resp, err := c.webApps.GetSourceControlSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return SourceControlRecord{}, nil
		}
		return SourceControlRecord{}, apperrors.WrapRemote("get_source_control", id.String(), err)
	}

	record := SourceControlRecord{}
	if resp.Properties != nil {
		record.URL = ptr.Deref(resp.Properties.RepoURL, "")
		record.Branch = ptr.Deref(resp.Properties.Branch, "")
	}

	return record, nil
}

func (c *Client) UpdateSourceControl(ctx context.Context, id SlotID, source slotcfg.DeploymentSource) error {
	control := armappservice.SiteSourceControl{
		Properties: &armappservice.SiteSourceControlProperties{
			RepoURL:             ptr.To(source.URL),
			Branch:              ptr.To(source.Branch),
			IsManualIntegration: ptr.To(false),
			IsMercurial:         ptr.To(false),
		},
	}

	poller, err := c.webApps.BeginCreateOrUpdateSourceControlSlot(ctx, id.ResourceGroup, id.AppName, id.SlotName, control, nil)
	if err != nil {
		return apperrors.WrapRemote("update_source_control", id.String(), err)
	}

	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return apperrors.WrapRemote("update_source_control", id.String(), err)
	}

	return nil
}

func slotRecordFromSite(site armappservice.Site) SlotRecord {
	record := SlotRecord{
		ID:       ptr.Deref(site.ID, ""),
		Name:     ptr.Deref(site.Name, ""),
		Location: ptr.Deref(site.Location, ""),
	}
	if site.Properties != nil {
		record.State = ptr.Deref(site.Properties.State, "")
	}
	if len(site.Tags) > 0 {
		record.Tags = make(map[string]string, len(site.Tags))
		for key, value := range site.Tags {
			record.Tags[key] = ptr.Deref(value, "")
		}
	}

	return record
}

func configRecordFromSiteConfig(config *armappservice.SiteConfig) SiteConfigRecord {
	if config == nil {
		return SiteConfigRecord{}
	}

	record := SiteConfigRecord{
		LinuxFxVersion:       ptr.Deref(config.LinuxFxVersion, ""),
		NetFrameworkVersion:  ptr.Deref(config.NetFrameworkVersion, ""),
		JavaVersion:          ptr.Deref(config.JavaVersion, ""),
		JavaContainer:        ptr.Deref(config.JavaContainer, ""),
		JavaContainerVersion: ptr.Deref(config.JavaContainerVersion, ""),
		PhpVersion:           ptr.Deref(config.PhpVersion, ""),
		PythonVersion:        ptr.Deref(config.PythonVersion, ""),
		NodeVersion:          ptr.Deref(config.NodeVersion, ""),
		AppCommandLine:       ptr.Deref(config.AppCommandLine, ""),
		AutoSwapSlotName:     config.AutoSwapSlotName,
	}
	if config.ScmType != nil {
		record.ScmType = string(*config.ScmType)
	}

	return record
}

// buildSiteConfig assembles the ARM site configuration from the optional
// clone base and the normalized patch. Patch fields win over base fields;
// empty patch fields fall back to the base so cloning preserves what the
// source slot had.
func buildSiteConfig(envelope Envelope) *armappservice.SiteConfig {
	base := SiteConfigRecord{}
	if envelope.BaseConfig != nil {
		base = *envelope.BaseConfig
	}
	patch := envelope.Config

	config := &armappservice.SiteConfig{}

	if v := firstNonEmpty(patch.LinuxFxVersion, base.LinuxFxVersion); v != "" {
		config.LinuxFxVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.NetFrameworkVersion, base.NetFrameworkVersion); v != "" {
		config.NetFrameworkVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.JavaVersion, base.JavaVersion); v != "" {
		config.JavaVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.JavaContainer, base.JavaContainer); v != "" {
		config.JavaContainer = ptr.To(v)
	}
	if v := firstNonEmpty(patch.JavaContainerVersion, base.JavaContainerVersion); v != "" {
		config.JavaContainerVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.PhpVersion, base.PhpVersion); v != "" {
		config.PhpVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.PythonVersion, base.PythonVersion); v != "" {
		config.PythonVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.NodeVersion, base.NodeVersion); v != "" {
		config.NodeVersion = ptr.To(v)
	}
	if v := firstNonEmpty(patch.ScmType, base.ScmType); v != "" {
		config.ScmType = ptr.To(armappservice.ScmType(v))
	}
	if v := firstNonEmpty(patch.AppCommandLine, base.AppCommandLine); v != "" {
		config.AppCommandLine = ptr.To(v)
	}

	if target, ok := patch.AutoSwap.Target(); ok {
		config.AutoSwapSlotName = ptr.To(target)
	} else if patch.AutoSwap.IsDisabled() {
		// An explicit empty value clears the remote target on PUT.
		config.AutoSwapSlotName = ptr.To("")
	} else if base.AutoSwapSlotName != nil {
		config.AutoSwapSlotName = base.AutoSwapSlotName
	}

	// A non-nil map is a full rewrite of the remote settings: an empty map
	// must reach the wire as an explicit empty collection so the PUT clears
	// everything instead of leaving the remote values untouched.
	if envelope.AppSettings != nil {
		config.AppSettings = make([]*armappservice.NameValuePair, 0, len(envelope.AppSettings))
		for key, value := range envelope.AppSettings {
			config.AppSettings = append(config.AppSettings, &armappservice.NameValuePair{
				Name:  ptr.To(key),
				Value: ptr.To(value),
			})
		}
	}

	return config
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
