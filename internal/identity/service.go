package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/db/models"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

// Resolver maps a raw inbound phone string to a known driver within a tenant.
type Resolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, rawPhone string) (*models.Driver, error)
}

type resolver struct {
	repo     Repository
	phoneCfg config.PhoneConfig
}

// NewResolver builds a phone-based driver resolver.
func NewResolver(repo Repository, phoneCfg config.PhoneConfig) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	if phoneCfg.CountryCode == "" {
		return nil, fmt.Errorf("phone country code required")
	}
	return &resolver{repo: repo, phoneCfg: phoneCfg}, nil
}

func (r *resolver) Resolve(ctx context.Context, tenantID uuid.UUID, rawPhone string) (*models.Driver, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	candidates := Candidates(rawPhone, r.phoneCfg)
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "phone does not match any driver")
	}

	driver, err := r.repo.FindByPhoneCandidates(ctx, tenantID, candidates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "phone does not match any driver")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup driver by phone")
	}
	return driver, nil
}
