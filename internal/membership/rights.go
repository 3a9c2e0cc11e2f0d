package membership

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

// RightsRepository reads the benefit reference tables.
type RightsRepository interface {
	ListCategories(ctx context.Context) ([]models.MemberRightCategory, error)
	ListRights(ctx context.Context) ([]models.MemberRight, error)
	ListLevelRights(ctx context.Context, levelType int) ([]models.MemberLevelRight, error)
}

type rightsRepository struct {
	db *gorm.DB
}

func NewRightsRepository(db *gorm.DB) RightsRepository {
	return &rightsRepository{db: db}
}

func (r *rightsRepository) ListCategories(ctx context.Context) ([]models.MemberRightCategory, error) {
	var categories []models.MemberRightCategory
	if err := r.db.WithContext(ctx).
		Order("category ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *rightsRepository) ListRights(ctx context.Context) ([]models.MemberRight, error) {
	var rights []models.MemberRight
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rights).Error; err != nil {
		return nil, err
	}
	return rights, nil
}

func (r *rightsRepository) ListLevelRights(ctx context.Context, levelType int) ([]models.MemberLevelRight, error) {
	var links []models.MemberLevelRight
	if err := r.db.WithContext(ctx).
		Where("level_type = ?", levelType).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// LevelRight is one benefit as presented for a specific level.
type LevelRight struct {
	ExternalID     string `json:"external_id"`
	Category       int    `json:"category"`
	CategoryName   string `json:"category_name"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	IconURL        string `json:"icon_url"`
	ShowInMainPage bool   `json:"show_in_main_page"`
}

// RightsService assembles the per-level benefit view.
type RightsService struct {
	repo RightsRepository
}

type RightsServiceParams struct {
	Repo RightsRepository
}

func NewRightsService(params RightsServiceParams) (*RightsService, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("membership.NewRightsService: rights repository is required")
	}
	return &RightsService{repo: params.Repo}, nil
}

// RightsForLevel returns the benefits granted to one level, grouped data
// resolved: each entry carries its category name and the effective
// main-page flag (the link's override when present, the right's own flag
// otherwise). Ordering is by category, then right id.
func (s *RightsService) RightsForLevel(ctx context.Context, levelType int) ([]LevelRight, error) {
	if levelType < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "levelType must be a positive tier ordinal")
	}

	links, err := s.repo.ListLevelRights(ctx, levelType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load level rights")
	}
	if len(links) == 0 {
		return []LevelRight{}, nil
	}

	rights, err := s.repo.ListRights(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rights")
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load right categories")
	}

	rightsByExternalID := make(map[string]models.MemberRight, len(rights))
	for _, r := range rights {
		rightsByExternalID[r.ExternalID] = r
	}
	categoryNames := make(map[int]string, len(categories))
	for _, c := range categories {
		categoryNames[c.Category] = c.Name
	}

	out := make([]LevelRight, 0, len(links))
	for _, link := range links {
		right, ok := rightsByExternalID[link.RightExternalID]
		if !ok {
			// Dangling link rows are ignored so stale reference data never
			// breaks the page.
			continue
		}
		show := right.ShowInMainPage
		if link.ShowInMainPage != nil {
			show = *link.ShowInMainPage
		}
		out = append(out, LevelRight{
			ExternalID:     right.ExternalID,
			Category:       right.Category,
			CategoryName:   categoryNames[right.Category],
			Title:          right.Title,
			Description:    right.Description,
			IconURL:        right.IconURL,
			ShowInMainPage: show,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ExternalID < out[j].ExternalID
	})
	return out, nil
}

// MainPageRights filters RightsForLevel down to the benefits flagged for
// the member home page.
func (s *RightsService) MainPageRights(ctx context.Context, levelType int) ([]LevelRight, error) {
	all, err := s.RightsForLevel(ctx, levelType)
	if err != nil {
		return nil, err
	}
	out := make([]LevelRight, 0, len(all))
	for _, r := range all {
		if r.ShowInMainPage {
			out = append(out, r)
		}
	}
	return out, nil
}
