package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
)

type stubUserRepo struct {
	byID        map[int64]*models.User
	byTelephone map[string]*models.User
	nextID      int64
	created     []*models.User
	createErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:        map[int64]*models.User{},
		byTelephone: map[string]*models.User{},
		nextID:      1,
	}
}

func (s *stubUserRepo) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	s.byID[user.ID] = user
	s.byTelephone[user.Telephone] = user
	return user
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.byID))
	for id := int64(1); id < s.nextID; id++ {
		if user, ok := s.byID[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.byID[id], nil
}

func (s *stubUserRepo) FindByTelephone(ctx context.Context, telephone string) (*models.User, error) {
	return s.byTelephone[telephone], nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(user)
	s.created = append(s.created, user)
	return nil
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id int64, fields map[string]any) (bool, error) {
	user, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if name, ok := fields["name"].(string); ok {
		user.Name = name
	}
	return true, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	user, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byTelephone, user.Telephone)
	return true, nil
}

type stubLevelsRepo struct {
	levels []models.MemberLevel
	err    error
}

func (s *stubLevelsRepo) ListLevels(ctx context.Context) ([]models.MemberLevel, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.levels, nil
}

func newUserService(t *testing.T, repo Repository, levels *stubLevelsRepo) *Service {
	t.Helper()
	if levels == nil {
		levels = &stubLevelsRepo{}
	}
	svc, err := NewService(ServiceParams{Repo: repo, Levels: levels})
	require.NoError(t, err)
	return svc
}

func TestRegisterStartsAtLowestTier(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(t, repo, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:      " 小明 ",
		Telephone: " 13800000001 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "小明", user.Name)
	assert.Equal(t, "13800000001", user.Telephone)
	require.NotNil(t, user.LevelType)
	assert.Equal(t, 1, *user.LevelType)
	assert.Zero(t, user.Coins)
	assert.Zero(t, user.GrowthValue)
}

func TestRegisterDuplicateTelephone(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	svc := newUserService(t, repo, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:      "小红",
		Telephone: "13800000001",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Empty(t, repo.created)
}

func TestRegisterMapsConstraintRaceToConflict(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errDuplicate{}
	svc := newUserService(t, repo, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:      "小红",
		Telephone: "13800000002",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

type errDuplicate struct{}

func (errDuplicate) Error() string {
	return `ERROR: duplicate key value violates unique constraint "user_telephone_key" (SQLSTATE 23505)`
}

func TestGetProfileResolvesLevelName(t *testing.T) {
	level := 2
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "小明", Telephone: "13800000001", LevelType: &level})
	levels := &stubLevelsRepo{levels: []models.MemberLevel{
		{LevelType: 1, LevelName: "银卡会员"},
		{LevelType: 2, LevelName: "金卡会员"},
	}}
	svc := newUserService(t, repo, levels)

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "金卡会员", profile.LevelName)
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc := newUserService(t, newStubUserRepo(), nil)

	_, err := svc.GetProfile(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileRenames(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	svc := newUserService(t, repo, nil)

	name := "小明同学"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "小明同学", updated.Name)
}

func TestListUsersReturnsAllAccounts(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	repo.add(&models.User{Name: "小红", Telephone: "13800000002"})
	svc := newUserService(t, repo, nil)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "小明", users[0].Name)
	assert.Equal(t, "小红", users[1].Name)
}

func TestGetByTelephone(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	svc := newUserService(t, repo, nil)

	user, err := svc.GetByTelephone(context.Background(), "13800000001")
	require.NoError(t, err)
	assert.Equal(t, "小明", user.Name)

	_, err = svc.GetByTelephone(context.Background(), "13800000099")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetByTelephone(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteUser(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	svc := newUserService(t, repo, nil)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	err := svc.DeleteUser(context.Background(), user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileRejectsBlankName(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "小明", Telephone: "13800000001"})
	svc := newUserService(t, repo, nil)

	name := "   "
	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{Name: &name})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
