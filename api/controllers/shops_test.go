package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
	"github.com/soukplace/soukplace-backend/pkg/types"
)

type testShopsService struct {
	registerFn func(ctx context.Context, input shops.RegisterInput) (*models.Shop, error)
	ownerFn    func(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error)
	feeFn      func(ctx context.Context, shopID uuid.UUID, schedule types.FeeSchedule) (*models.Shop, error)
	scheduleFn func(ctx context.Context, shopID uuid.UUID, input shops.ScheduleInput) (*models.Shop, error)
}

func (s *testShopsService) Register(ctx context.Context, input shops.RegisterInput) (*models.Shop, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, input)
	}
	return &models.Shop{}, nil
}

func (s *testShopsService) GetByID(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	return &models.Shop{ID: shopID}, nil
}

func (s *testShopsService) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Shop, error) {
	if s.ownerFn != nil {
		return s.ownerFn(ctx, ownerUserID)
	}
	return &models.Shop{ID: uuid.New(), OwnerUserID: ownerUserID}, nil
}

func (s *testShopsService) UpdateSchedule(ctx context.Context, shopID uuid.UUID, input shops.ScheduleInput) (*models.Shop, error) {
	if s.scheduleFn != nil {
		return s.scheduleFn(ctx, shopID, input)
	}
	return &models.Shop{ID: shopID}, nil
}

func (s *testShopsService) SetDeliveryFee(ctx context.Context, shopID uuid.UUID, schedule types.FeeSchedule) (*models.Shop, error) {
	if s.feeFn != nil {
		return s.feeFn(ctx, shopID, schedule)
	}
	return &models.Shop{ID: shopID}, nil
}

func (s *testShopsService) AddClosure(ctx context.Context, shopID uuid.UUID, input shops.ClosureInput) (*models.Shop, error) {
	return &models.Shop{ID: shopID}, nil
}

func (s *testShopsService) RemoveClosure(ctx context.Context, shopID, closureID uuid.UUID) error {
	return nil
}

func (s *testShopsService) List(ctx context.Context, params pagination.Params, status *enums.ShopStatus) (*shops.ShopList, error) {
	return &shops.ShopList{}, nil
}

func (s *testShopsService) Approve(ctx context.Context, input shops.ModerateInput) (*models.Shop, error) {
	return &models.Shop{ID: input.ShopID, Status: enums.ShopStatusApproved}, nil
}

func (s *testShopsService) Suspend(ctx context.Context, input shops.ModerateInput) (*models.Shop, error) {
	return &models.Shop{ID: input.ShopID, Status: enums.ShopStatusSuspended}, nil
}

func TestRegisterShopForwardsOwner(t *testing.T) {
	ownerID := uuid.New()
	var got shops.RegisterInput
	svc := &testShopsService{
		registerFn: func(ctx context.Context, input shops.RegisterInput) (*models.Shop, error) {
			got = input
			return &models.Shop{ID: uuid.New(), Name: input.Name}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shops", `{"name":"Ferme des Oliviers"}`, ownerID, "customer")
	resp := httptest.NewRecorder()
	RegisterShop(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.OwnerUserID != ownerID {
		t.Fatalf("unexpected owner %s", got.OwnerUserID)
	}
	if got.Name != "Ferme des Oliviers" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

func TestRegisterShopRejectsShortName(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/shops", `{"name":"x"}`, uuid.New(), "customer")
	resp := httptest.NewRecorder()
	RegisterShop(&testShopsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetShopDeliveryFeeParsesDecimal(t *testing.T) {
	ownerID := uuid.New()
	shopID := uuid.New()
	var got types.FeeSchedule
	svc := &testShopsService{
		ownerFn: func(ctx context.Context, oid uuid.UUID) (*models.Shop, error) {
			return &models.Shop{ID: shopID, OwnerUserID: oid}, nil
		},
		feeFn: func(ctx context.Context, sid uuid.UUID, schedule types.FeeSchedule) (*models.Shop, error) {
			if sid != shopID {
				t.Fatalf("unexpected shop %s", sid)
			}
			got = schedule
			return &models.Shop{ID: sid}, nil
		},
	}

	req := authedRequest(http.MethodPut, "/api/v1/shops/me/delivery-fee",
		`{"type":"percentage","amount":"7.5"}`, ownerID, "shop")
	resp := httptest.NewRecorder()
	SetShopDeliveryFee(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Type != enums.FeeTypePercentage {
		t.Fatalf("unexpected type %q", got.Type)
	}
	if !got.Amount.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestSetShopDeliveryFeeRejectsBadAmount(t *testing.T) {
	req := authedRequest(http.MethodPut, "/api/v1/shops/me/delivery-fee",
		`{"type":"flat","amount":"lots"}`, uuid.New(), "shop")
	resp := httptest.NewRecorder()
	SetShopDeliveryFee(&testShopsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateShopScheduleConvertsWeekdays(t *testing.T) {
	var got shops.ScheduleInput
	svc := &testShopsService{
		scheduleFn: func(ctx context.Context, sid uuid.UUID, input shops.ScheduleInput) (*models.Shop, error) {
			got = input
			return &models.Shop{ID: sid}, nil
		},
	}

	req := authedRequest(http.MethodPut, "/api/v1/shops/me/schedule",
		`{"open_days":[1,3,5],"click_collect_enabled":true,"same_day_delivery":false}`, uuid.New(), "shop")
	resp := httptest.NewRecorder()
	UpdateShopSchedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(got.OpenDays) != 3 {
		t.Fatalf("expected 3 open days got %d", len(got.OpenDays))
	}
	if !got.OpenDays.Contains(time.Monday) || !got.OpenDays.Contains(time.Friday) {
		t.Fatalf("weekdays not converted: %v", got.OpenDays)
	}
	if !got.ClickCollectEnabled {
		t.Fatal("expected click and collect enabled")
	}
}
