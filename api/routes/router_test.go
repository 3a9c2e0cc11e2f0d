package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	addresssvc "github.com/afkahka/kfccfk/internal/address"
	catalogsvc "github.com/afkahka/kfccfk/internal/catalog"
	discountsvc "github.com/afkahka/kfccfk/internal/discount"
	membershipsvc "github.com/afkahka/kfccfk/internal/membership"
	userssvc "github.com/afkahka/kfccfk/internal/users"
	"github.com/afkahka/kfccfk/pkg/config"
	"github.com/afkahka/kfccfk/pkg/db/models"
	pkgredis "github.com/afkahka/kfccfk/pkg/redis"
)

var routerSchema = []string{
	`CREATE TABLE IF NOT EXISTS user (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  telephone TEXT NOT NULL UNIQUE,
  coins INTEGER NOT NULL DEFAULT 0,
  growth_value INTEGER NOT NULL DEFAULT 0,
  level_type INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS member_level (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  level_type INTEGER NOT NULL UNIQUE,
  level_name TEXT NOT NULL,
  growth_value_min INTEGER NOT NULL,
  growth_value_max INTEGER,
  growth_multiplier NUMERIC
);`,
	`CREATE TABLE IF NOT EXISTS member_right_rule (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  level_type INTEGER NOT NULL,
  weekday INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  priority INTEGER NOT NULL DEFAULT 100,
  type TEXT NOT NULL,
  percent_off INTEGER,
  discount_amount NUMERIC,
  threshold_amount NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS coupon (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  discount_amount NUMERIC NOT NULL,
  threshold_amount NUMERIC,
  valid_from DATETIME NOT NULL,
  valid_to DATETIME NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS user_coupon (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  coupon_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'unused',
  obtained_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS member_right_category (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category INTEGER NOT NULL UNIQUE,
  name TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS member_right (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL UNIQUE,
  category INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  icon_url TEXT,
  show_in_main_page INTEGER NOT NULL DEFAULT 0
);`,
	`CREATE TABLE IF NOT EXISTS member_level_right (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  level_type INTEGER NOT NULL,
  right_external_id TEXT NOT NULL,
  show_in_main_page INTEGER
);`,
	`CREATE TABLE IF NOT EXISTS address (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  contact_person TEXT NOT NULL,
  gender TEXT,
  phone_number TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  house_number TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS category (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS coffee (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  parent_id INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  image_url TEXT
);`,
}

func int64Ptr(v int64) *int64 { return &v }

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	return newTestRouterWithStore(t, nil)
}

func newTestRouterWithStore(t *testing.T, store pkgredis.IdempotencyStore) (http.Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range routerSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	levelRepo := membershipsvc.NewLevelRepository(db)

	membershipService, err := membershipsvc.NewService(membershipsvc.ServiceParams{
		Accounts: membershipsvc.NewAccountRepository(db),
		Levels:   levelRepo,
	})
	require.NoError(t, err)

	rightsService, err := membershipsvc.NewRightsService(membershipsvc.RightsServiceParams{
		Repo: membershipsvc.NewRightsRepository(db),
	})
	require.NoError(t, err)

	discountService, err := discountsvc.NewService(discountsvc.ServiceParams{
		Rules:   discountsvc.NewRuleRepository(db),
		Coupons: discountsvc.NewCouponRepository(db),
	})
	require.NoError(t, err)

	userService, err := userssvc.NewService(userssvc.ServiceParams{
		Repo:   userssvc.NewRepository(db),
		Levels: levelRepo,
	})
	require.NoError(t, err)

	addressService, err := addresssvc.NewService(addresssvc.ServiceParams{
		Repo: addresssvc.NewRepository(db),
	})
	require.NoError(t, err)

	catalogService, err := catalogsvc.NewService(catalogsvc.ServiceParams{
		Repo: catalogsvc.NewRepository(db),
	})
	require.NoError(t, err)

	handler := NewRouter(Deps{
		Config:      &config.Config{App: config.AppConfig{Env: "test"}},
		Idempotency: store,
		Membership:  membershipService,
		Rights:      rightsService,
		Discount:    discountService,
		Users:       userService,
		Addresses:   addressService,
		Catalog:     catalogService,
	})
	return handler, db
}

// fakeSettlementStore mimics the Redis idempotency surface in memory.
type fakeSettlementStore struct {
	values map[string]string
}

func newFakeSettlementStore() *fakeSettlementStore {
	return &fakeSettlementStore{values: map[string]string{}}
}

func (s *fakeSettlementStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (s *fakeSettlementStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *fakeSettlementStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func seedLevels(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, lvl := range []models.MemberLevel{
		{LevelType: 1, LevelName: "银卡会员", GrowthValueMin: 0, GrowthValueMax: int64Ptr(499)},
		{LevelType: 2, LevelName: "金卡会员", GrowthValueMin: 500, GrowthValueMax: int64Ptr(1999)},
		{LevelType: 3, LevelName: "白金会员", GrowthValueMin: 2000, GrowthValueMax: nil},
	} {
		require.NoError(t, db.Create(&lvl).Error)
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	return doJSONHeaders(t, handler, method, path, body, nil)
}

func doJSONHeaders(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestRouterHealthAndPing(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec, _ := doJSON(t, handler, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Kfccfk-Env"))

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/public/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestRouterRegisterAndSettleOrder(t *testing.T) {
	handler, db := newTestRouter(t)
	seedLevels(t, db)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/users",
		`{"name":"小明","telephone":"13800000001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := payload["data"].(map[string]any)
	userID := int64(user["id"].(float64))

	rec, payload = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/paid", 1001),
		fmt.Sprintf(`{"user_id":%d,"amount":"49.9"}`, userID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := payload["data"].(map[string]any)
	assert.Equal(t, float64(49), result["coins_added"])
	assert.Equal(t, float64(49), result["growth_added"])
	assert.Equal(t, float64(1), result["level_type"])

	rec, payload = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := payload["data"].(map[string]any)
	assert.Equal(t, "银卡会员", profile["level_name"])
}

func TestRouterDiscountPreviewQuery(t *testing.T) {
	handler, db := newTestRouter(t)
	seedLevels(t, db)

	user := models.User{Name: "小明", Telephone: "13800000001"}
	require.NoError(t, db.Create(&user).Error)

	// With no rule rows the preview is a zero-discount passthrough.
	rec, payload := doJSON(t, handler, http.MethodGet,
		fmt.Sprintf("/api/v1/discounts/preview?user_id=%d&subtotal=50", user.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	preview := payload["data"].(map[string]any)
	assert.Equal(t, "0", preview["totalDiscount"])
	assert.Equal(t, "50", preview["payable"])
}

func TestRouterSettlementIdempotency(t *testing.T) {
	store := newFakeSettlementStore()
	handler, db := newTestRouterWithStore(t, store)
	seedLevels(t, db)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/users",
		`{"name":"小明","telephone":"13800000001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := int64(payload["data"].(map[string]any)["id"].(float64))

	body := fmt.Sprintf(`{"user_id":%d,"amount":"49.9"}`, userID)

	// The settlement route refuses to run without an Idempotency-Key.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/v1/orders/1001/paid", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	// A replayed key credits once and returns the stored response.
	key := map[string]string{"Idempotency-Key": "order-1001"}
	for i := 0; i < 2; i++ {
		rec, payload = doJSONHeaders(t, handler, http.MethodPost, "/api/v1/orders/1001/paid", body, key)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := payload["data"].(map[string]any)
		assert.Equal(t, float64(49), result["coins_added"])
	}

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	assert.Equal(t, int64(49), user.Coins)
	assert.Equal(t, int64(49), user.GrowthValue)

	// Reusing the key with a different body is a conflict.
	rec, payload = doJSONHeaders(t, handler, http.MethodPost, "/api/v1/orders/1001/paid",
		fmt.Sprintf(`{"user_id":%d,"amount":"99.9"}`, userID), key)
	require.Equal(t, http.StatusConflict, rec.Code)
	errPayload := payload["error"].(map[string]any)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", errPayload["code"])
}

func TestRouterUserDirectory(t *testing.T) {
	handler, db := newTestRouter(t)
	seedLevels(t, db)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/users",
		`{"name":"小明","telephone":"13800000001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := int64(payload["data"].(map[string]any)["id"].(float64))

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/v1/users",
		`{"name":"小红","telephone":"13800000002"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload = doJSON(t, handler, http.MethodGet, "/api/v1/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := payload["data"].([]any)
	assert.Len(t, users, 2)

	rec, payload = doJSON(t, handler, http.MethodGet, "/api/v1/users/phone/13800000002", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "小红", payload["data"].(map[string]any)["name"])

	rec, payload = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["data"].(map[string]any)["deleted"])

	rec, _ = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterAddressCheckPhone(t *testing.T) {
	handler, db := newTestRouter(t)
	seedLevels(t, db)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/users",
		`{"name":"小明","telephone":"13800000001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := int64(payload["data"].(map[string]any)["id"].(float64))

	rec, _ = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/addresses", userID),
		`{"contact_person":"小明","phone_number":"13900000001","address":"人民路1号"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, payload = doJSON(t, handler, http.MethodGet, "/api/v1/addresses/check-phone/13900000001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["data"].(map[string]any)["available"])

	rec, payload = doJSON(t, handler, http.MethodGet, "/api/v1/addresses/check-phone/13900000099", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["data"].(map[string]any)["available"])
}

func TestRouterSettleUnknownUser(t *testing.T) {
	handler, db := newTestRouter(t)
	seedLevels(t, db)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/orders/1001/paid",
		`{"user_id":424242,"amount":"10"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	errPayload := payload["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errPayload["code"])
}

func TestRouterValidationError(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/v1/users", `{"name":"小明"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errPayload := payload["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errPayload["code"])
}
