package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/JohnBravos/bookhub-manager/model"
)

func (s *Store) GetSystemSetting(ctx context.Context, name string) (*model.SystemSetting, error) {
	if cache, ok := s.SettingCache.Load(name); ok {
		return cache.(*model.SystemSetting), nil
	}

	setting := &model.SystemSetting{}
	stmt := "SELECT name, value, description FROM system_settings WHERE name = ?"
	if err := s.db.QueryRowContext(ctx, stmt, name).Scan(&setting.Name, &setting.Value, &setting.Description); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get system setting")
	}

	s.SettingCache.Store(setting.Name, setting)
	return setting, nil
}

func (s *Store) UpsertSystemSetting(ctx context.Context, setting *model.SystemSetting) (*model.SystemSetting, error) {
	stmt := `
		INSERT INTO system_settings (name, value, description)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE
		SET value = EXCLUDED.value, description = EXCLUDED.description`
	if _, err := s.db.ExecContext(ctx, stmt, setting.Name, setting.Value, setting.Description); err != nil {
		return nil, errors.Wrap(err, "failed to upsert system setting")
	}

	s.SettingCache.Store(setting.Name, setting)
	return setting, nil
}

// GetLendingSettings returns the persisted lending overrides, or nil when
// none were saved yet.
func (s *Store) GetLendingSettings(ctx context.Context) (*model.LendingSettings, error) {
	setting, err := s.GetSystemSetting(ctx, model.SettingTypeLending)
	if err != nil || setting == nil {
		return nil, err
	}

	settings := &model.LendingSettings{}
	if err := json.Unmarshal([]byte(setting.Value), settings); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal lending settings")
	}
	return settings, nil
}

func (s *Store) UpsertLendingSettings(ctx context.Context, settings *model.LendingSettings) (*model.LendingSettings, error) {
	value, err := json.Marshal(settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal lending settings")
	}

	if _, err := s.UpsertSystemSetting(ctx, &model.SystemSetting{
		Name:  model.SettingTypeLending,
		Value: string(value),
	}); err != nil {
		return nil, err
	}
	return settings, nil
}
