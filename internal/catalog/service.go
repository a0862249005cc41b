package catalog

import (
	"context"
	"fmt"

	"moduscap-be/internal/logger"
	"moduscap-be/internal/money"

	"go.uber.org/zap"
)

// Invalidator evicts cached option data after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, code string) error
}

type Service interface {
	GetProduct(ctx context.Context, code string) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)
	UpdateOptionPrice(ctx context.Context, code, price string) (string, error)
	DeleteOption(ctx context.Context, code string) error
}

type service struct {
	repo  Repository
	cache Invalidator
}

// NewService builds the catalog service. cache may be nil.
func NewService(repo Repository, cache Invalidator) Service {
	return &service{repo: repo, cache: cache}
}

// GetProduct returns an active product with its options loaded.
func (s *service) GetProduct(ctx context.Context, code string) (*Product, error) {
	p, err := s.repo.FindProductByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", code, err)
	}
	if p == nil || !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// UpdateOptionPrice stores a validated price and returns it normalised.
func (s *service) UpdateOptionPrice(ctx context.Context, code, price string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOptionPrice"),
		zap.String("code", code),
	)

	normalized, err := money.ParsePrice(price)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateOptionPrice(ctx, code, normalized); err != nil {
		log.Warn("failed to update option price", zap.Error(err))
		return "", err
	}
	s.invalidate(ctx, log, code)

	log.Info("option price updated", zap.String("price", normalized))
	return normalized, nil
}

// DeleteOption removes an option unless a product still references it.
func (s *service) DeleteOption(ctx context.Context, code string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteOption"),
		zap.String("code", code),
	)

	o, err := s.repo.FindOptionByCode(ctx, code)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrOptionNotFound
	}

	inUse, err := s.repo.IsOptionInUse(ctx, o.ID)
	if err != nil {
		return err
	}
	if inUse {
		log.Info("option deletion refused, still in use")
		return ErrOptionInUse
	}

	if err := s.repo.DeleteOption(ctx, o.ID); err != nil {
		log.Error("failed to delete option", zap.Error(err))
		return err
	}
	s.invalidate(ctx, log, code)
	return nil
}

func (s *service) invalidate(ctx context.Context, log *zap.Logger, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, code); err != nil {
		log.Warn("failed to invalidate option cache", zap.Error(err))
	}
}
