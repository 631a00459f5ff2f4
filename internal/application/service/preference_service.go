package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// KeyInvoiceDefaults stores the doctor's default currency and method.
	KeyInvoiceDefaults = "invoice.defaults"
	// KeyCatalogSuggestions stores custom service names typed by the doctor.
	KeyCatalogSuggestions = "catalog.suggestions"

	// MaxSuggestions caps the stored suggestion list.
	MaxSuggestions = 20
)

// migration upgrades a stored value from version n to n+1.
type migration func(json.RawMessage) (json.RawMessage, error)

// preferenceSchema describes the current version of a key and how to get
// there from older versions. migrations[n] upgrades version n.
type preferenceSchema struct {
	version    int
	migrations map[int]migration
}

var preferenceSchemas = map[string]preferenceSchema{
	KeyInvoiceDefaults: {
		version: 2,
		migrations: map[int]migration{
			1: renameField("paymentMethod", "method"),
		},
	},
	KeyCatalogSuggestions: {
		version: 2,
		migrations: map[int]migration{
			1: wrapArray("items"),
		},
	},
}

// PreferenceService reads and writes versioned per-doctor settings.
type PreferenceService struct {
	repo     repository.PreferenceRepository
	defaults entity.InvoiceDefaults
	logger   *zap.Logger
}

// NewPreferenceService creates a new preference service. defaults are used
// for any field the doctor has not stored.
func NewPreferenceService(repo repository.PreferenceRepository, defaults entity.InvoiceDefaults, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{repo: repo, defaults: defaults, logger: logger}
}

// GetInvoiceDefaults returns the stored defaults merged over the configured ones.
func (s *PreferenceService) GetInvoiceDefaults(ctx context.Context, ownerID string) (entity.InvoiceDefaults, error) {
	out := s.defaults
	var stored entity.InvoiceDefaults
	found, err := s.load(ctx, ownerID, KeyInvoiceDefaults, &stored)
	if err != nil {
		return out, err
	}
	if !found {
		return out, nil
	}
	if stored.Currency != "" {
		out.Currency = stored.Currency
	}
	if stored.Method != "" {
		out.Method = stored.Method
	}
	return out, nil
}

// SaveInvoiceDefaults stores new invoice defaults.
func (s *PreferenceService) SaveInvoiceDefaults(ctx context.Context, ownerID string, in entity.InvoiceDefaults) (entity.InvoiceDefaults, error) {
	in.Currency = strings.TrimSpace(in.Currency)
	in.Method = strings.TrimSpace(in.Method)
	if in.Currency == "" && in.Method == "" {
		return entity.InvoiceDefaults{}, apperror.NewValidationError("Currency or method is required")
	}
	if err := s.store(ctx, ownerID, KeyInvoiceDefaults, in); err != nil {
		return entity.InvoiceDefaults{}, err
	}
	return s.GetInvoiceDefaults(ctx, ownerID)
}

type suggestionList struct {
	Items []string `json:"items"`
}

// GetSuggestions returns the custom suggestion list, most recent first.
func (s *PreferenceService) GetSuggestions(ctx context.Context, ownerID string) ([]string, error) {
	var list suggestionList
	if _, err := s.load(ctx, ownerID, KeyCatalogSuggestions, &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		return []string{}, nil
	}
	return list.Items, nil
}

// AddSuggestion records name at the front of the list. Duplicates are
// collapsed and the list is capped at MaxSuggestions.
func (s *PreferenceService) AddSuggestion(ctx context.Context, ownerID, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidationError("Suggestion name is required")
	}

	current, err := s.GetSuggestions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := lo.Uniq(append([]string{name}, current...))
	if len(items) > MaxSuggestions {
		items = items[:MaxSuggestions]
	}

	if err := s.store(ctx, ownerID, KeyCatalogSuggestions, suggestionList{Items: items}); err != nil {
		return nil, err
	}
	return items, nil
}

// load reads key into out, upgrading and writing back older records.
func (s *PreferenceService) load(ctx context.Context, ownerID, key string, out any) (bool, error) {
	pref, err := s.repo.Get(ctx, ownerID, key)
	if err != nil {
		return false, fmt.Errorf("load preference %s: %w", key, err)
	}
	if pref == nil {
		return false, nil
	}

	schema := preferenceSchemas[key]
	value := json.RawMessage(pref.Value)
	from := pref.SchemaVersion
	if from < 1 {
		from = 1
	}

	for v := from; v < schema.version; v++ {
		migrate, ok := schema.migrations[v]
		if !ok {
			return false, fmt.Errorf("preference %s: no migration from version %d", key, v)
		}
		if value, err = migrate(value); err != nil {
			return false, fmt.Errorf("migrate preference %s from version %d: %w", key, v, err)
		}
	}

	if from < schema.version {
		pref.SchemaVersion = schema.version
		pref.Value = string(value)
		if err := s.repo.Save(ctx, pref); err != nil {
			s.logger.Warn("failed to write back migrated preference",
				zap.String("owner_id", ownerID),
				zap.String("key", key),
				zap.Error(err),
			)
		} else {
			s.logger.Info("preference migrated",
				zap.String("owner_id", ownerID),
				zap.String("key", key),
				zap.Int("from_version", from),
				zap.Int("to_version", schema.version),
			)
		}
	}

	if err := json.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("decode preference %s: %w", key, err)
	}
	return true, nil
}

func (s *PreferenceService) store(ctx context.Context, ownerID, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %s: %w", key, err)
	}

	pref, err := s.repo.Get(ctx, ownerID, key)
	if err != nil {
		return fmt.Errorf("load preference %s: %w", key, err)
	}
	if pref == nil {
		pref = &entity.StoredPreference{OwnerID: ownerID, Key: key}
	}
	pref.SchemaVersion = preferenceSchemas[key].version
	pref.Value = string(data)

	if err := s.repo.Save(ctx, pref); err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}

func renameField(from, to string) migration {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		if v, ok := obj[from]; ok {
			if _, exists := obj[to]; !exists {
				obj[to] = v
			}
			delete(obj, from)
		}
		return json.Marshal(obj)
	}
}

func wrapArray(field string) migration {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return json.Marshal(map[string][]string{field: items})
	}
}
