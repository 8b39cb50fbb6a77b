package repository

import (
	"github.com/deppfellow/guardian/internal/server"
)

// Repositories holds the repositories backed by this service's own database.
// Provider-backed repositories are built per request by the procedures.
type Repositories struct {
	BillingEvents *BillingEventRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		BillingEvents: NewBillingEventRepository(s),
	}
}
