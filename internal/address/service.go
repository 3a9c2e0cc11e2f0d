package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

// Input carries the writable address fields.
type Input struct {
	ContactPerson string `json:"contact_person" validate:"required,max=64"`
	Gender        string `json:"gender" validate:"omitempty,max=8"`
	PhoneNumber   string `json:"phone_number" validate:"required,min=5,max=20"`
	Address       string `json:"address" validate:"required,max=255"`
	HouseNumber   string `json:"house_number" validate:"omitempty,max=64"`
	IsDefault     bool   `json:"is_default"`
}

type Service struct {
	repo Repository
}

type ServiceParams struct {
	Repo Repository
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("address.NewService: repository is required")
	}
	return &Service{repo: params.Repo}, nil
}

// PhoneCheck reports whether a phone number is still free to attach to a new
// address.
type PhoneCheck struct {
	PhoneNumber string `json:"phone_number"`
	Available   bool   `json:"available"`
}

// CheckPhone reports whether any address already carries the phone number.
func (s *Service) CheckPhone(ctx context.Context, phone string) (*PhoneCheck, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone number")
	}
	return &PhoneCheck{PhoneNumber: phone, Available: existing == nil}, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.Address, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addrs, nil
}

func (s *Service) Get(ctx context.Context, id, userID int64) (*models.Address, error) {
	addr, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read address")
	}
	if addr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return addr, nil
}

// Create stores a new address. The first address of a user becomes the
// default even when not requested, so checkout always has one.
func (s *Service) Create(ctx context.Context, userID int64, input Input) (*models.Address, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.ensurePhoneFree(ctx, strings.TrimSpace(input.PhoneNumber), 0); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}

	addr := &models.Address{
		UserID:        userID,
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Gender:        input.Gender,
		PhoneNumber:   strings.TrimSpace(input.PhoneNumber),
		Address:       strings.TrimSpace(input.Address),
		HouseNumber:   input.HouseNumber,
		IsDefault:     input.IsDefault || len(existing) == 0,
	}
	if err := s.repo.Create(ctx, addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return addr, nil
}

func (s *Service) Update(ctx context.Context, id, userID int64, input Input) (*models.Address, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	addr, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read address")
	}
	if addr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}

	if err := s.ensurePhoneFree(ctx, strings.TrimSpace(input.PhoneNumber), id); err != nil {
		return nil, err
	}

	addr.ContactPerson = strings.TrimSpace(input.ContactPerson)
	addr.Gender = input.Gender
	addr.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	addr.Address = strings.TrimSpace(input.Address)
	addr.HouseNumber = input.HouseNumber
	addr.IsDefault = input.IsDefault

	if err := s.repo.Update(ctx, addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return addr, nil
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	affected, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !affected {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

// ensurePhoneFree rejects a phone number already carried by a different
// address row. ignoreID exempts the row being updated.
func (s *Service) ensurePhoneFree(ctx context.Context, phone string, ignoreID int64) error {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone number")
	}
	if existing != nil && existing.ID != ignoreID {
		return pkgerrors.New(pkgerrors.CodeConflict, "phone number already in use")
	}
	return nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.ContactPerson) == "" ||
		strings.TrimSpace(input.PhoneNumber) == "" ||
		strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact person, phone number and address are required")
	}
	return nil
}
