// Package settings persists the user's generation preferences.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maintenance-backend/internal/shared/storage/kv"
	"maintenance-backend/internal/shared/telemetry"
)

// Key is the persistence key for user settings.
const Key = "maintenance_settings"

// Settings shapes the generation request.
type Settings struct {
	DefaultPersonnel      string `json:"defaultPersonnel"`
	DefaultSupervisorRole string `json:"defaultSupervisorRole"`
}

// Defaults returns the settings used before the user saves any.
func Defaults() Settings {
	return Settings{
		DefaultPersonnel:      "Instrument Technician, Maintenance Assistant",
		DefaultSupervisorRole: "Maintenance Supervisor",
	}
}

// Service loads and saves settings through the persistence port.
type Service struct {
	Store kv.Store
}

// NewService constructs a Service.
func NewService(store kv.Store) *Service {
	return &Service{Store: store}
}

// Get returns persisted settings, or defaults when none exist or the record is unreadable.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	raw, ok, err := s.Store.Get(ctx, Key)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return Defaults(), nil
	}
	var stored Settings
	if err := json.Unmarshal(raw, &stored); err != nil {
		telemetry.Warn("settings.corrupt", map[string]any{"key": Key, "error": err})
		return Defaults(), nil
	}
	return stored, nil
}

// Save overwrites the persisted settings.
func (s *Service) Save(ctx context.Context, in Settings) (Settings, error) {
	in.DefaultPersonnel = strings.TrimSpace(in.DefaultPersonnel)
	in.DefaultSupervisorRole = strings.TrimSpace(in.DefaultSupervisorRole)
	payload, err := json.Marshal(in)
	if err != nil {
		return Settings{}, err
	}
	if err := s.Store.Put(ctx, Key, payload); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return in, nil
}
