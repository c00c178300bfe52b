package service

import (
	"context"
	"fmt"

	"whatsorders/internal/errors"
	"whatsorders/internal/models"
	"whatsorders/internal/resolver"
	"whatsorders/internal/validation"

	"github.com/sirupsen/logrus"
)

// AliasAdminService maintains the curated alias table: persisted rows in
// the store plus the in-memory table the resolver matches against. New
// aliases take effect for subsequent resolution without a restart.
type AliasAdminService struct {
	db     Store
	table  *resolver.AliasTable
	logger *logrus.Logger
}

func NewAliasAdminService(db Store, table *resolver.AliasTable, logger *logrus.Logger) *AliasAdminService {
	return &AliasAdminService{db: db, table: table, logger: logger}
}

// RegisterAlias persists an alias and makes it live. Registering an
// existing alias repoints it at the new company while keeping its
// original registration order.
func (s *AliasAdminService) RegisterAlias(ctx context.Context, aliasText string, companyID int64) (models.CompanyAlias, error) {
	if err := validation.ValidateAlias(aliasText, companyID); err != nil {
		return models.CompanyAlias{}, err
	}

	norm := resolver.Normalize(aliasText)
	if norm == "" {
		return models.CompanyAlias{}, errors.NewValidationError("alias", aliasText,
			"alias contains no matchable characters")
	}

	if err := s.db.UpsertAlias(ctx, norm, companyID); err != nil {
		return models.CompanyAlias{}, err
	}

	// The table keys tie-breaking on the stored row id, so read it back.
	aliases, err := s.db.ListAliases(ctx)
	if err != nil {
		return models.CompanyAlias{}, err
	}
	for _, a := range aliases {
		if a.AliasText == norm {
			s.table.Register(a.AliasText, a.CompanyID, a.ID)
			s.logger.WithFields(logrus.Fields{
				"alias":      a.AliasText,
				"company_id": a.CompanyID,
			}).Info("Alias registered")
			return a, nil
		}
	}

	return models.CompanyAlias{}, fmt.Errorf("alias %q not found after upsert", norm)
}

// ListAliases returns all registered aliases in registration order.
func (s *AliasAdminService) ListAliases(ctx context.Context) ([]models.CompanyAlias, error) {
	return s.db.ListAliases(ctx)
}

// SeedAliases merges configured alias seeds into the table at startup.
// Seeds never overwrite an operator-registered alias for the same text.
func (s *AliasAdminService) SeedAliases(ctx context.Context, seeds []models.AliasSeed) error {
	existing, err := s.db.ListAliases(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		known[a.AliasText] = struct{}{}
	}

	for _, seed := range seeds {
		norm := resolver.Normalize(seed.Alias)
		if norm == "" {
			continue
		}
		if _, ok := known[norm]; ok {
			continue
		}
		if _, err := s.RegisterAlias(ctx, seed.Alias, seed.CompanyID); err != nil {
			return fmt.Errorf("failed to seed alias %q: %w", seed.Alias, err)
		}
	}
	return nil
}
