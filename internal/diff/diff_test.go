package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"

	"github.com/dc-tec/appslot-operator/internal/azure"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

func TestNeedsConfigUpdateVersionFields(t *testing.T) {
	tests := []struct {
		name     string
		patch    slotcfg.SiteConfigPatch
		observed azure.SiteConfigRecord
		want     bool
	}{
		{
			name: "all versions match",
			patch: slotcfg.SiteConfigPatch{
				PhpVersion: "7.0",
				ScmType:    "GitHub",
			},
			observed: azure.SiteConfigRecord{
				PhpVersion: "7.0",
				ScmType:    "GitHub",
			},
			want: false,
		},
		{
			name:     "version match is case-insensitive",
			patch:    slotcfg.SiteConfigPatch{NetFrameworkVersion: "V4.0"},
			observed: azure.SiteConfigRecord{NetFrameworkVersion: "v4.0"},
			want:     false,
		},
		{
			name:     "version drift",
			patch:    slotcfg.SiteConfigPatch{PythonVersion: "3.6"},
			observed: azure.SiteConfigRecord{PythonVersion: "2.7"},
			want:     true,
		},
		{
			name:     "observed value absent counts as drift",
			patch:    slotcfg.SiteConfigPatch{JavaVersion: "1.8"},
			observed: azure.SiteConfigRecord{},
			want:     true,
		},
		{
			name:     "unspecified patch fields are ignored",
			patch:    slotcfg.SiteConfigPatch{},
			observed: azure.SiteConfigRecord{PhpVersion: "7.0"},
			want:     false,
		},
		{
			name:     "scm type drift",
			patch:    slotcfg.SiteConfigPatch{ScmType: "LocalGit"},
			observed: azure.SiteConfigRecord{ScmType: "None"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsConfigUpdate(tt.patch, tt.observed))
		})
	}
}

func TestNeedsConfigUpdateRuntimeDescriptor(t *testing.T) {
	patch := slotcfg.SiteConfigPatch{LinuxFxVersion: "NODE|10.14"}

	assert.False(t, NeedsConfigUpdate(patch, azure.SiteConfigRecord{LinuxFxVersion: "NODE|10.14"}))
	assert.True(t, NeedsConfigUpdate(patch, azure.SiteConfigRecord{LinuxFxVersion: "NODE|6.9"}))

	// Descriptor comparison is case-sensitive: the normalizer uppercases.
	assert.True(t, NeedsConfigUpdate(patch, azure.SiteConfigRecord{LinuxFxVersion: "node|10.14"}))

	// An empty patch descriptor against an observed one is also drift.
	assert.True(t, NeedsConfigUpdate(slotcfg.SiteConfigPatch{}, azure.SiteConfigRecord{LinuxFxVersion: "NODE|10.14"}))
}

func TestNeedsConfigUpdateAutoSwap(t *testing.T) {
	tests := []struct {
		name     string
		autoSwap slotcfg.AutoSwap
		observed *string
		want     bool
	}{
		{"unset never compares", slotcfg.AutoSwapUnset(), ptr.To("staging"), false},
		{"disabled with remote target", slotcfg.AutoSwapDisabled(), ptr.To("staging"), true},
		{"disabled with no remote target", slotcfg.AutoSwapDisabled(), nil, false},
		{"target matches", slotcfg.AutoSwapTo("staging"), ptr.To("staging"), false},
		{"target differs", slotcfg.AutoSwapTo("canary"), ptr.To("staging"), true},
		{"target absent remotely", slotcfg.AutoSwapTo("canary"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := slotcfg.SiteConfigPatch{AutoSwap: tt.autoSwap}
			observed := azure.SiteConfigRecord{AutoSwapSlotName: tt.observed}
			assert.Equal(t, tt.want, NeedsConfigUpdate(patch, observed))
		})
	}
}

func TestNeedsSettingsUpdate(t *testing.T) {
	tests := []struct {
		name     string
		desired  map[string]string
		purge    bool
		observed map[string]string
		want     bool
	}{
		{
			name:     "identical maps",
			desired:  map[string]string{"A": "1", "B": "2"},
			observed: map[string]string{"B": "2", "A": "1"},
			want:     false,
		},
		{
			name:     "purge always updates",
			desired:  map[string]string{"A": "1"},
			purge:    true,
			observed: map[string]string{"A": "1"},
			want:     true,
		},
		{
			name:     "purge with empty desired still updates",
			desired:  nil,
			purge:    true,
			observed: map[string]string{"A": "1"},
			want:     true,
		},
		{
			name:     "count mismatch",
			desired:  map[string]string{"A": "1"},
			observed: map[string]string{"A": "1", "B": "2"},
			want:     true,
		},
		{
			name:     "value mismatch",
			desired:  map[string]string{"A": "1"},
			observed: map[string]string{"A": "2"},
			want:     true,
		},
		{
			name:     "missing key",
			desired:  map[string]string{"A": "1"},
			observed: map[string]string{"B": "1"},
			want:     true,
		},
		{
			name:     "no desired settings leaves remote alone",
			desired:  nil,
			observed: map[string]string{"A": "1"},
			want:     false,
		},
		{
			name:     "equality is exact string match",
			desired:  map[string]string{"A": "true"},
			observed: map[string]string{"A": "True"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsSettingsUpdate(tt.desired, tt.purge, tt.observed))
		})
	}
}

func TestMergeTags(t *testing.T) {
	current := map[string]string{"env": "staging", "team": "web"}

	merged, changed := MergeTags(current, map[string]string{"env": "staging"})
	assert.False(t, changed)
	assert.Equal(t, current, merged)

	merged, changed = MergeTags(current, map[string]string{"env": "prod"})
	assert.True(t, changed)
	assert.Equal(t, "prod", merged["env"])
	assert.Equal(t, "web", merged["team"], "existing tags are preserved")

	merged, changed = MergeTags(current, map[string]string{"cost": "123"})
	assert.True(t, changed)
	assert.Len(t, merged, 3)

	_, changed = MergeTags(nil, nil)
	assert.False(t, changed)
}

func TestNeedsSourceControlUpdate(t *testing.T) {
	observed := azure.SourceControlRecord{URL: "https://github.com/org/repo", Branch: "main"}

	assert.False(t, NeedsSourceControlUpdate(nil, observed))
	assert.False(t, NeedsSourceControlUpdate(
		&slotcfg.DeploymentSource{URL: "https://github.com/org/repo", Branch: "main"}, observed))
	assert.True(t, NeedsSourceControlUpdate(
		&slotcfg.DeploymentSource{URL: "https://github.com/org/other"}, observed))
	assert.True(t, NeedsSourceControlUpdate(
		&slotcfg.DeploymentSource{Branch: "develop"}, observed))
	assert.False(t, NeedsSourceControlUpdate(&slotcfg.DeploymentSource{}, observed))
}
