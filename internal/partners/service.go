package partners

import (
	"context"

	"github.com/stocklane/stocklane/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Create(ctx context.Context, kind Kind, input PartnerInput) (int64, error)
	Get(ctx context.Context, id int64) (Partner, error)
	List(ctx context.Context, kind Kind) ([]Partner, error)
}

// Service coordinates directory operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create validates and inserts a partner of the given kind.
func (s *Service) Create(ctx context.Context, kind Kind, input PartnerInput) (Partner, error) {
	if err := shared.ValidateStruct(input); err != nil {
		return Partner{}, err
	}
	id, err := s.repo.Create(ctx, kind, input)
	if err != nil {
		return Partner{}, err
	}
	return s.repo.Get(ctx, id)
}

// List returns the directory of the given kind.
func (s *Service) List(ctx context.Context, kind Kind) ([]Partner, error) {
	return s.repo.List(ctx, kind)
}
