// Package diff compares canonical desired configuration against observed
// remote state and decides which remote updates are necessary.
package diff

import (
	"strings"

	"github.com/dc-tec/appslot-operator/internal/azure"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// NeedsConfigUpdate reports whether the observed site configuration drifts
// from the normalized patch.
//
// Version fields compare case-insensitively and only when the patch
// specifies them; an absent observed value counts as drift. The linux
// runtime descriptor compares case-sensitively in both directions because
// the normalizer already uppercased it. The auto-swap target follows the
// tri-state patch: unset performs no comparison at all.
func NeedsConfigUpdate(patch slotcfg.SiteConfigPatch, observed azure.SiteConfigRecord) bool {
	versionFields := []struct {
		desired  string
		observed string
	}{
		{patch.NetFrameworkVersion, observed.NetFrameworkVersion},
		{patch.JavaVersion, observed.JavaVersion},
		{patch.PhpVersion, observed.PhpVersion},
		{patch.PythonVersion, observed.PythonVersion},
		{patch.ScmType, observed.ScmType},
	}

	for _, field := range versionFields {
		if field.desired == "" {
			continue
		}
		if field.observed == "" || !strings.EqualFold(field.desired, field.observed) {
			return true
		}
	}

	if patch.LinuxFxVersion != observed.LinuxFxVersion {
		return true
	}

	if patch.AutoSwap.IsDisabled() && observed.AutoSwapSlotName != nil {
		return true
	}
	if target, ok := patch.AutoSwap.Target(); ok {
		if observed.AutoSwapSlotName == nil || *observed.AutoSwapSlotName != target {
			return true
		}
	}

	return false
}

// NeedsSettingsUpdate reports whether the application-settings map must be
// rewritten. A purge is unconditionally an update. Otherwise the maps must
// contain exactly the same keys with exactly equal string values; iteration
// order never matters and no value normalization is applied.
func NeedsSettingsUpdate(desired map[string]string, purge bool, observed map[string]string) bool {
	if purge {
		return true
	}

	if len(desired) == 0 {
		return false
	}

	if len(desired) != len(observed) {
		return true
	}

	for key, value := range desired {
		got, ok := observed[key]
		if !ok || got != value {
			return true
		}
	}

	return false
}

// MergeTags merges desired tags over the current set, preserving existing
// tags unless overridden. It returns the merged map and whether anything
// changed (a differing override or a new key).
func MergeTags(current, desired map[string]string) (map[string]string, bool) {
	merged := make(map[string]string, len(current)+len(desired))
	for key, value := range current {
		merged[key] = value
	}

	changed := false
	for key, value := range desired {
		if got, ok := merged[key]; !ok || got != value {
			changed = true
		}
		merged[key] = value
	}

	return merged, changed
}

// NeedsSourceControlUpdate reports whether the slot's source-control binding
// drifts from the desired deployment source. Only fields the user specified
// are compared.
func NeedsSourceControlUpdate(desired *slotcfg.DeploymentSource, observed azure.SourceControlRecord) bool {
	if desired == nil {
		return false
	}

	if desired.URL != "" && desired.URL != observed.URL {
		return true
	}
	if desired.Branch != "" && desired.Branch != observed.Branch {
		return true
	}

	return false
}
