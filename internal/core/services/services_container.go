package services

import (
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/platform/config"
)

// ExternalAdapters groups the edge adapters the services depend on.
type ExternalAdapters struct {
	Gateway  portssvc.PaymentGateway
	Webhooks portssvc.PaymentWebhookVerifier
	Notifier portssvc.NotificationDispatcher
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, adapters ExternalAdapters) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The reconciliation engine is the only aggregate writer, so the ledger depends on it.
	container.Reconciliation = NewReconciliationService(repos.LedgerRepo, cfg.ReconciliationEpsilon)

	container.Ledger = NewLedgerService(
		repos.LedgerRepo,
		container.Reconciliation,
		WithPaymentGateway(adapters.Gateway),
		WithNotificationDispatcher(adapters.Notifier),
		WithDefaultCurrency(cfg.DonationCurrency),
	)

	container.DonationFlow = NewDonationFlowService(adapters.Gateway, container.Ledger, cfg.IdentityLoginPath)
	container.Identity = NewIdentityService(cfg)
	container.Webhooks = adapters.Webhooks

	return container
}
