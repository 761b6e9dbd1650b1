package slotcfg

import (
	"strings"

	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
)

// App settings injected for private registry access.
const (
	SettingRegistryServerURL      = "DOCKER_REGISTRY_SERVER_URL"
	SettingRegistryServerUsername = "DOCKER_REGISTRY_SERVER_USERNAME"
	SettingRegistryServerPassword = "DOCKER_REGISTRY_SERVER_PASSWORD"
)

var supportedLinuxFrameworks = map[string]bool{
	"ruby":       true,
	"php":        true,
	"dotnetcore": true,
	"node":       true,
	"java":       true,
}

var supportedWindowsFrameworks = map[string]bool{
	"net_framework": true,
	"php":           true,
	"python":        true,
	"node":          true,
	"java":          true,
}

// SiteConfigPatch is the canonical site configuration derived from a Spec.
// It is built once per invocation and never mutated afterwards; empty fields
// mean "leave the remote value alone".
type SiteConfigPatch struct {
	// LinuxFxVersion is the runtime descriptor for linux-hosted slots,
	// e.g. "NODE|10.14", "TOMCAT|8.5-jre8" or "DOCKER|myregistry.io/ubuntu".
	LinuxFxVersion string

	NetFrameworkVersion  string
	JavaVersion          string
	JavaContainer        string
	JavaContainerVersion string
	PhpVersion           string
	PythonVersion        string
	NodeVersion          string
	ScmType              string

	// AppCommandLine carries the startup file for linux-hosted slots.
	AppCommandLine string

	AutoSwap AutoSwap

	// AppSettings is the assembled desired settings map, including the
	// registry credential entries for container deployments. The registry
	// password value must never appear in logs or results.
	AppSettings map[string]string
}

// Normalize translates the desired spec into the canonical patch for a slot
// whose parent app is linux- or windows-hosted. All OS-dependent framework
// rules are enforced here so that nothing downstream has to re-check them.
func Normalize(spec Spec, parentIsLinux bool) (SiteConfigPatch, error) {
	patch := SiteConfigPatch{
		ScmType:     spec.ScmType,
		AutoSwap:    spec.AutoSwap,
		AppSettings: make(map[string]string, len(spec.AppSettings)+3),
	}
	for k, v := range spec.AppSettings {
		patch.AppSettings[k] = v
	}

	if container, ok := spec.Runtime.Container(); ok {
		normalizeContainer(&patch, container)
	} else if frameworks := spec.Runtime.Frameworks(); len(frameworks) > 0 {
		var err error
		if parentIsLinux {
			err = normalizeLinuxFrameworks(&patch, frameworks)
		} else {
			err = normalizeWindowsFrameworks(&patch, frameworks)
		}
		if err != nil {
			return SiteConfigPatch{}, err
		}
	}

	if parentIsLinux && spec.StartupFile != "" {
		patch.AppCommandLine = spec.StartupFile
	}

	return patch, nil
}

func normalizeLinuxFrameworks(patch *SiteConfigPatch, frameworks []Framework) error {
	if len(frameworks) != 1 {
		return apperrors.NewValidation("linux web apps support exactly one framework")
	}

	fx := frameworks[0]
	if !supportedLinuxFrameworks[fx.Name] {
		return apperrors.NewValidation("unsupported framework %q for linux web app", fx.Name)
	}

	patch.LinuxFxVersion = strings.ToUpper(fx.Name + "|" + fx.Version)

	if fx.Name != "java" {
		return nil
	}

	if fx.Version != "8" {
		return apperrors.NewValidation("linux web apps support java 8 only")
	}

	container, hasContainer := fx.Settings["java_container"]
	if hasContainer && !strings.EqualFold(container, "tomcat") {
		return apperrors.NewValidation("linux web apps support the tomcat java container only")
	}

	if hasContainer {
		patch.LinuxFxVersion = "TOMCAT|" + fx.Settings["java_container_version"] + "-jre8"
	} else {
		patch.LinuxFxVersion = "JAVA|8-jre8"
	}

	return nil
}

func normalizeWindowsFrameworks(patch *SiteConfigPatch, frameworks []Framework) error {
	for _, fx := range frameworks {
		if !supportedWindowsFrameworks[fx.Name] {
			return apperrors.NewValidation("unsupported framework %q for windows web app", fx.Name)
		}

		switch fx.Name {
		case "net_framework":
			patch.NetFrameworkVersion = fx.Version
		case "java":
			patch.JavaVersion = fx.Version
		case "php":
			patch.PhpVersion = fx.Version
		case "python":
			patch.PythonVersion = fx.Version
		case "node":
			patch.NodeVersion = fx.Version
		}

		for key, value := range fx.Settings {
			switch key {
			case "java_container":
				patch.JavaContainer = value
			case "java_container_version":
				patch.JavaContainerVersion = value
			default:
				return apperrors.NewValidation("unsupported framework setting %q", key)
			}
		}
	}

	return nil
}

func normalizeContainer(patch *SiteConfigPatch, container ContainerSettings) {
	descriptor := "DOCKER|"

	if container.RegistryServerURL != "" {
		patch.AppSettings[SettingRegistryServerURL] = "https://" + container.RegistryServerURL
		descriptor += container.RegistryServerURL + "/"
	}

	descriptor += container.Name
	patch.LinuxFxVersion = descriptor

	if container.RegistryServerUser != "" {
		patch.AppSettings[SettingRegistryServerUsername] = container.RegistryServerUser
	}
	if container.RegistryServerPassword != "" {
		patch.AppSettings[SettingRegistryServerPassword] = container.RegistryServerPassword
	}
}
