package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/port"
)

var catTracer = otel.Tracer("service/categories")

// CategoriesService manages the category table. Mutations invalidate
// the name-to-id cache used by the ingest pipeline.
type CategoriesService struct {
	store    port.CategoryStore
	catCache port.Cache[map[string]string]
	logger   *zap.Logger
}

// NewCategoriesService creates a categories service.
func NewCategoriesService(store port.CategoryStore, catCache port.Cache[map[string]string], logger *zap.Logger) *CategoriesService {
	return &CategoriesService{
		store:    store,
		catCache: catCache,
		logger:   logger,
	}
}

// List returns every category.
func (s *CategoriesService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.List")
	defer span.End()

	return s.store.ListCategories(ctx)
}

// Create adds a new category.
func (s *CategoriesService) Create(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Create")
	defer span.End()

	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, cat.Name) {
			return nil, &domain.ErrConflict{Message: "Categoria já existe"}
		}
	}

	created, err := s.store.CreateCategory(ctx, cat)
	if err != nil {
		return nil, err
	}

	s.catCache.Delete(categoriesCacheKey)
	s.logger.Info("category created",
		zap.String("category_id", created.ID),
		zap.String("name", created.Name),
	)
	return created, nil
}

// Update renames or recolors a category.
func (s *CategoriesService) Update(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Update")
	defer span.End()

	if cat.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	updated, err := s.store.UpdateCategory(ctx, cat)
	if err != nil {
		return nil, err
	}

	s.catCache.Delete(categoriesCacheKey)
	s.logger.Info("category updated", zap.String("category_id", cat.ID))
	return updated, nil
}

// Delete removes a category.
func (s *CategoriesService) Delete(ctx context.Context, id string) error {
	ctx, span := catTracer.Start(ctx, "CategoriesService.Delete")
	defer span.End()

	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "required"}
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.catCache.Delete(categoriesCacheKey)
	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}
