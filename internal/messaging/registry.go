package messaging

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

// Registry holds one sender per provider and picks the right one for a
// tenant's configured transport.
type Registry struct {
	senders map[enums.ProviderKind]Sender
}

// NewRegistry builds a registry from the available senders. Nil senders are
// skipped so a deployment can run with a single provider configured.
func NewRegistry(senders ...Sender) (*Registry, error) {
	registry := &Registry{senders: map[enums.ProviderKind]Sender{}}
	for _, sender := range senders {
		if sender == nil {
			continue
		}
		kind := sender.Provider()
		if _, exists := registry.senders[kind]; exists {
			return nil, fmt.Errorf("duplicate sender for provider %q", kind)
		}
		registry.senders[kind] = sender
	}
	if len(registry.senders) == 0 {
		return nil, fmt.Errorf("at least one sender is required")
	}
	return registry, nil
}

// ForTenant returns the sender matching the tenant's configured provider.
func (r *Registry) ForTenant(tenant *models.Tenant) (Sender, error) {
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant required")
	}
	sender, ok := r.senders[tenant.MessagingProvider]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("no sender configured for provider %q", tenant.MessagingProvider))
	}
	return sender, nil
}

// Close closes every registered sender and combines their errors.
func (r *Registry) Close() error {
	var err error
	for _, sender := range r.senders {
		err = multierr.Append(err, sender.Close())
	}
	return err
}
