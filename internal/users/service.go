package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/afkahka/kfccfk/internal/membership"
	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

// RegisterInput holds the fields needed to create a member account.
type RegisterInput struct {
	Name      string `json:"name" validate:"required,max=64"`
	Telephone string `json:"telephone" validate:"required,min=5,max=20"`
}

// ProfileUpdateInput carries an optional name change.
type ProfileUpdateInput struct {
	Name *string `json:"name" validate:"omitempty,max=64"`
}

// Profile is the member-facing account view: the stored row plus the
// resolved tier name.
type Profile struct {
	User      models.User `json:"user"`
	LevelName string      `json:"level_name"`
}

type Service struct {
	repo   Repository
	levels membership.LevelRepository
}

type ServiceParams struct {
	Repo   Repository
	Levels membership.LevelRepository
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users.NewService: repository is required")
	}
	if params.Levels == nil {
		return nil, fmt.Errorf("users.NewService: level repository is required")
	}
	return &Service{repo: params.Repo, levels: params.Levels}, nil
}

// ListUsers returns every account ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return users, nil
}

// GetByTelephone looks an account up by its registered phone number.
func (s *Service) GetByTelephone(ctx context.Context, telephone string) (*models.User, error) {
	telephone = strings.TrimSpace(telephone)
	if telephone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telephone is required")
	}
	user, err := s.repo.FindByTelephone(ctx, telephone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// DeleteUser removes the account row.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	affected, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !affected {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

// Register creates a new member at the lowest tier with zero balances.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	telephone := strings.TrimSpace(input.Telephone)
	name := strings.TrimSpace(input.Name)
	if name == "" || telephone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and telephone are required")
	}

	existing, err := s.repo.FindByTelephone(ctx, telephone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check telephone")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "telephone already registered")
	}

	initialLevel := 1
	user := &models.User{
		Name:      name,
		Telephone: telephone,
		LevelType: &initialLevel,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// The uniqueness check above races with concurrent registrations;
		// the constraint is the authority.
		if isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "telephone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

// GetProfile returns the account together with its resolved tier name.
// A tier the level table no longer describes yields an empty name.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	profile := &Profile{User: *user}
	if user.LevelType == nil {
		return profile, nil
	}

	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		// Best effort: the profile is still useful without the tier name.
		return profile, nil
	}
	for _, lvl := range levels {
		if lvl.LevelType == *user.LevelType {
			profile.LevelName = lvl.LevelName
			break
		}
	}
	return profile, nil
}

// UpdateProfile applies the provided fields to the account.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input ProfileUpdateInput) (*models.User, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		fields["name"] = name
	}

	affected, err := s.repo.UpdateProfile(ctx, userID, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	if !affected {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
