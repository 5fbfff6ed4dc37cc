package backend

import (
	"fmt"

	"ridelog/internal/config"
)

// BackendType selects the remote sync adapter.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	WebAppBackend BackendType = "webapp"
	SheetsBackend BackendType = "sheets"
)

func (t BackendType) String() string { return string(t) }

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, WebAppBackend, SheetsBackend:
		return true
	}
	return false
}

// Config is what the factory needs to build an adapter. Google credentials
// stay in the environment; the sheets client reads them itself.
type Config struct {
	Type        BackendType
	EndpointURL string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:        backendType,
		EndpointURL: appConfig.SheetEndpointURL,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == WebAppBackend && c.EndpointURL == "" {
		return fmt.Errorf("endpoint URL is required for webapp backend")
	}
	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, WebAppBackend, SheetsBackend}
}
