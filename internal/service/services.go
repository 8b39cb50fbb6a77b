package service

import (
	"github.com/deppfellow/guardian/internal/lib/job"
	"github.com/deppfellow/guardian/internal/lib/payment"
	"github.com/deppfellow/guardian/internal/repository"
	"github.com/deppfellow/guardian/internal/server"
)

type Services struct {
	Auth    *AuthService
	Billing *BillingService
	Job     *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories, payments *payment.Client) *Services {
	return &Services{
		Auth:    NewAuthService(s.Job.Client),
		Billing: NewBillingService(payments, repos.BillingEvents, s.Job.Client),
		Job:     s.Job,
	}
}
