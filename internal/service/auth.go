package service

import (
	"context"
	"net/http"

	"github.com/deppfellow/guardian/internal/lib/job"
	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/repository"
	"github.com/rs/zerolog"
)

type AuthService struct {
	tasks TaskEnqueuer
}

func NewAuthService(tasks TaskEnqueuer) *AuthService {
	return &AuthService{tasks: tasks}
}

// Repository decorates repo so that a successful sign-up queues a welcome
// e-mail. Every other call goes straight to repo.
func (s *AuthService) Repository(repo repository.AuthRepository) repository.AuthRepository {
	return &welcomingAuthRepository{AuthRepository: repo, tasks: s.tasks}
}

type welcomingAuthRepository struct {
	repository.AuthRepository
	tasks TaskEnqueuer
}

func (r *welcomingAuthRepository) SignUp(ctx context.Context, req *auth.SignUpRequest) (*auth.Result, []*http.Cookie, error) {
	result, cookies, err := r.AuthRepository.SignUp(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	// The account exists at this point; a failed enqueue only costs the e-mail.
	logger := zerolog.Ctx(ctx)
	task, err := job.NewWelcomeEmailTask(req.Email, req.Name)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build welcome email task")
		return result, cookies, nil
	}
	if _, err := r.tasks.EnqueueContext(ctx, task); err != nil {
		logger.Warn().Err(err).Str("to", req.Email).Msg("failed to enqueue welcome email")
	}

	return result, cookies, nil
}
