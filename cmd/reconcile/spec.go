package reconcile

import (
	"os"

	"sigs.k8s.io/yaml"

	apperrors "github.com/dc-tec/appslot-operator/internal/errors"
	"github.com/dc-tec/appslot-operator/internal/slotcfg"
)

// specDocument is the YAML document accepted by the one-shot reconcile
// command. It mirrors the WebAppSlot resource spec, except that the registry
// password is carried inline (or via $APPSLOT_REGISTRY_PASSWORD) because the
// CLI has no secret store to reference.
type specDocument struct {
	ResourceGroup string `json:"resourceGroup"`
	AppName       string `json:"appName"`
	SlotName      string `json:"slotName"`
	Location      string `json:"location,omitempty"`

	State    string `json:"state,omitempty"`
	AppState string `json:"appState,omitempty"`

	Frameworks []frameworkDocument `json:"frameworks,omitempty"`
	Container  *containerDocument  `json:"containerSettings,omitempty"`

	AppSettings      map[string]string `json:"appSettings,omitempty"`
	PurgeAppSettings bool              `json:"purgeAppSettings,omitempty"`
	StartupFile      string            `json:"startupFile,omitempty"`
	ScmType          string            `json:"scmType,omitempty"`

	ConfigurationSource string `json:"configurationSource,omitempty"`

	DeploymentSource *sourceDocument   `json:"deploymentSource,omitempty"`
	AutoSwap         *autoSwapDocument `json:"autoSwap,omitempty"`
	Swap             *swapDocument     `json:"swap,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

type frameworkDocument struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Settings map[string]string `json:"settings,omitempty"`
}

type containerDocument struct {
	Name               string `json:"name"`
	RegistryServerURL  string `json:"registryServerURL,omitempty"`
	RegistryServerUser string `json:"registryServerUser,omitempty"`
	// RegistryServerPassword may be omitted in the document and supplied
	// via the APPSLOT_REGISTRY_PASSWORD environment variable instead.
	RegistryServerPassword string `json:"registryServerPassword,omitempty"`
}

type sourceDocument struct {
	URL    string `json:"url"`
	Branch string `json:"branch,omitempty"`
}

type autoSwapDocument struct {
	SlotName string `json:"slotName,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type swapDocument struct {
	Action     string `json:"action"`
	TargetSlot string `json:"targetSlot,omitempty"`
}

// parseSpec decodes the YAML document and assembles the validated desired
// state for one reconcile invocation.
func parseSpec(raw []byte) (slotcfg.Spec, error) {
	var doc specDocument
	if err := yaml.UnmarshalStrict(raw, &doc); err != nil {
		return slotcfg.Spec{}, apperrors.NewValidation("malformed spec document: %v", err)
	}

	spec := slotcfg.Spec{
		ResourceGroup:       doc.ResourceGroup,
		AppName:             doc.AppName,
		SlotName:            doc.SlotName,
		Location:            doc.Location,
		State:               slotcfg.StatePresent,
		AppState:            slotcfg.AppStateStarted,
		AppSettings:         doc.AppSettings,
		PurgeAppSettings:    doc.PurgeAppSettings,
		StartupFile:         doc.StartupFile,
		ScmType:             doc.ScmType,
		ConfigurationSource: doc.ConfigurationSource,
		Tags:                doc.Tags,
	}
	if doc.State != "" {
		spec.State = slotcfg.PresenceState(doc.State)
	}
	if doc.AppState != "" {
		spec.AppState = slotcfg.AppState(doc.AppState)
	}

	if doc.Container != nil {
		if len(doc.Frameworks) > 0 {
			return slotcfg.Spec{}, apperrors.NewValidation("frameworks and container settings are mutually exclusive")
		}
		password := doc.Container.RegistryServerPassword
		if password == "" {
			password = os.Getenv("APPSLOT_REGISTRY_PASSWORD")
		}
		runtime, err := slotcfg.SelectContainer(slotcfg.ContainerSettings{
			Name:                   doc.Container.Name,
			RegistryServerURL:      doc.Container.RegistryServerURL,
			RegistryServerUser:     doc.Container.RegistryServerUser,
			RegistryServerPassword: password,
		})
		if err != nil {
			return slotcfg.Spec{}, err
		}
		spec.Runtime = runtime
	} else if len(doc.Frameworks) > 0 {
		frameworks := make([]slotcfg.Framework, 0, len(doc.Frameworks))
		for _, fw := range doc.Frameworks {
			frameworks = append(frameworks, slotcfg.Framework{
				Name:     fw.Name,
				Version:  fw.Version,
				Settings: fw.Settings,
			})
		}
		runtime, err := slotcfg.SelectFrameworks(frameworks)
		if err != nil {
			return slotcfg.Spec{}, err
		}
		spec.Runtime = runtime
	}

	if doc.DeploymentSource != nil {
		spec.DeploymentSource = &slotcfg.DeploymentSource{
			URL:    doc.DeploymentSource.URL,
			Branch: doc.DeploymentSource.Branch,
		}
	}

	if doc.AutoSwap != nil {
		if doc.AutoSwap.Disabled {
			if doc.AutoSwap.SlotName != "" {
				return slotcfg.Spec{}, apperrors.NewValidation("autoSwap slotName must be empty when disabled is true")
			}
			spec.AutoSwap = slotcfg.AutoSwapDisabled()
		} else {
			if doc.AutoSwap.SlotName == "" {
				return slotcfg.Spec{}, apperrors.NewValidation("autoSwap requires slotName unless disabled is true")
			}
			spec.AutoSwap = slotcfg.AutoSwapTo(doc.AutoSwap.SlotName)
		}
	}

	if doc.Swap != nil {
		spec.Swap = &slotcfg.SwapRequest{
			Action:     slotcfg.SwapAction(doc.Swap.Action),
			TargetSlot: doc.Swap.TargetSlot,
		}
	}

	if err := spec.Validate(); err != nil {
		return slotcfg.Spec{}, err
	}

	return spec, nil
}
