package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/enums"
	"github.com/soukplace/soukplace-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lots", func(db *gorm.DB) *gorm.DB {
			return db.Order("shop_lots.created_at ASC")
		}).
		Preload("Lots.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLot(ctx context.Context, lotID uuid.UUID) (*models.ShopLot, error) {
	var lot models.ShopLot
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", lotID).
		First(&lot).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateLot(ctx context.Context, lotID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopLot{}).
		Where("id = ?", lotID).
		Updates(updates).Error
}

func (r *repository) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters CustomerOrderFilters) (*CustomerOrderList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Lots").
		Where("customer_id = ?", customerID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Method != nil {
		query = query.Where("delivery_method = ?", *filters.Method)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &CustomerOrderList{Orders: make([]CustomerOrderSummary, 0, len(rows))}
	pageSize := pagination.NormalizeLimit(params.Limit)
	for i, row := range rows {
		if i == pageSize {
			list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: rows[pageSize-1].CreatedAt,
				ID:        rows[pageSize-1].ID,
			})
			break
		}
		list.Orders = append(list.Orders, CustomerOrderSummary{
			ID:             row.ID,
			OrderNumber:    row.OrderNumber,
			CreatedAt:      row.CreatedAt,
			Status:         row.Status,
			StatusLabel:    OrderStatusLabel(row.Status),
			DeliveryMethod: row.DeliveryMethod,
			DeliveryDate:   row.DeliveryDate,
			TotalCents:     row.TotalCents,
			LotCount:       len(row.Lots),
		})
	}
	return list, nil
}

func (r *repository) ListShopLots(ctx context.Context, shopID uuid.UUID, params pagination.Params, filters ShopLotFilters) (*ShopLotList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShopLot{}).
		Preload("Items").
		Where("shop_id = ?", shopID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	return r.listLots(ctx, query, params)
}

// ListDepositQueue returns lots dropped at the warehouse and still waiting
// for admin validation.
func (r *repository) ListDepositQueue(ctx context.Context, params pagination.Params) (*ShopLotList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShopLot{}).
		Preload("Items").
		Where("deposit_marked = ?", true).
		Where("deposit_validated_at IS NULL").
		Where("status NOT IN ?", []enums.LotStatus{enums.LotStatusCanceled, enums.LotStatusDelivered})

	return r.listLots(ctx, query, params)
}

func (r *repository) listLots(ctx context.Context, query *gorm.DB, params pagination.Params) (*ShopLotList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ShopLot
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		orderIDs = append(orderIDs, row.OrderID)
	}
	ordersByID := map[uuid.UUID]models.Order{}
	if len(orderIDs) > 0 {
		var orderRows []models.Order
		if err := r.db.WithContext(ctx).Where("id IN ?", orderIDs).Find(&orderRows).Error; err != nil {
			return nil, err
		}
		for _, row := range orderRows {
			ordersByID[row.ID] = row
		}
	}

	list := &ShopLotList{Lots: make([]ShopLotSummary, 0, len(rows))}
	pageSize := pagination.NormalizeLimit(params.Limit)
	for i, row := range rows {
		if i == pageSize {
			list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: rows[pageSize-1].CreatedAt,
				ID:        rows[pageSize-1].ID,
			})
			break
		}
		parent := ordersByID[row.OrderID]
		list.Lots = append(list.Lots, ShopLotSummary{
			LotID:          row.ID,
			OrderID:        row.OrderID,
			OrderNumber:    parent.OrderNumber,
			CreatedAt:      row.CreatedAt,
			Status:         row.Status,
			StatusLabel:    LotStatusLabel(row.Status),
			DeliveryMethod: parent.DeliveryMethod,
			DeliveryDate:   parent.DeliveryDate,
			SubtotalCents:  LotSubtotalCents(row),
			ItemCount:      len(row.Items),
		})
	}
	return list, nil
}
