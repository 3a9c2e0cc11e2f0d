package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

type Service struct {
	repo Repository
}

type ServiceParams struct {
	Repo Repository
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog.NewService: repository is required")
	}
	return &Service{repo: params.Repo}, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return category, nil
}

// ListProducts returns all products, or only those of one category when
// categoryID is non-zero.
func (s *Service) ListProducts(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)
	if categoryID > 0 {
		products, err = s.repo.ListProductsByCategory(ctx, categoryID)
	} else {
		products, err = s.repo.ListProducts(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// SearchProducts matches product titles against a keyword. A blank keyword
// is a validation error rather than a full-table listing.
func (s *Service) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search keyword is required")
	}
	products, err := s.repo.SearchProducts(ctx, keyword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return products, nil
}
