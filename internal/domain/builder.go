package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// Defaults applied to delivery addresses entered without them.
const (
	DefaultCity       = "Brasília"
	DefaultState      = "DF"
	DefaultPostalCode = "00000000"
	DefaultCountry    = "BR"
)

// ItemInput is a line item as entered by staff.
type ItemInput struct {
	Name         string  `validate:"required"`
	Quantity     int     `validate:"gt=0"`
	Price        float64 `validate:"gte=0"`
	Observations string
}

// NewOrderInput is what the creation form collects.
type NewOrderInput struct {
	StoreID       string `validate:"required"`
	StoreName     string
	CustomerName  string      `validate:"required"`
	CustomerPhone string      `validate:"omitempty,min=8"`
	Items         []ItemInput `validate:"required,min=1,dive"`
	Address       *DeliveryAddress
	PaymentOrigin PaymentOrigin `validate:"required"`
	Prepaid       bool
}

// NewOrder assembles a complete order payload ready to be posted: a fresh
// order id, per-item totals, the order total, one payment covering the total
// and a single RECEIVED history entry at now. Prices must be whole cents, so
// every line total is exactly price * quantity.
func NewOrder(in NewOrderInput, now time.Time) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	orderID := uuid.New().String()

	total := decimal.Zero
	items := make([]OrderItem, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be greater than zero")
		}
		if it.Price < 0 {
			return nil, apperrors.InvalidInput("item price must not be negative")
		}
		if price := decimal.NewFromFloat(it.Price); !price.Equal(price.Round(2)) {
			return nil, apperrors.InvalidInput("item price must not have fractions of a cent")
		}
		line := lineTotal(it.Price, it.Quantity)
		total = total.Add(line)
		items[i] = OrderItem{
			Name:         it.Name,
			Quantity:     it.Quantity,
			Price:        it.Price,
			TotalPrice:   line.InexactFloat64(),
			Observations: it.Observations,
		}
	}
	totalPrice := total.InexactFloat64()

	details := OrderDetails{
		OrderID:    orderID,
		TotalPrice: totalPrice,
		CreatedAt:  now.UnixMilli(),
		Customer: Customer{
			Name:           in.CustomerName,
			TemporaryPhone: in.CustomerPhone,
		},
		Items: items,
		Payments: []Payment{{
			Origin:  in.PaymentOrigin,
			Value:   totalPrice,
			Prepaid: in.Prepaid,
		}},
		DeliveryAddress: withAddressDefaults(in.Address),
	}
	if in.StoreName != "" {
		details.Store = &StoreInfo{ID: in.StoreID, Name: in.StoreName}
	}
	details.ResetHistory(now)

	return &Order{
		StoreID: in.StoreID,
		OrderID: orderID,
		Order:   details,
	}, nil
}

func withAddressDefaults(a *DeliveryAddress) *DeliveryAddress {
	if a == nil {
		return nil
	}
	out := *a
	if out.City == "" {
		out.City = DefaultCity
	}
	if out.State == "" {
		out.State = DefaultState
	}
	if out.PostalCode == "" {
		out.PostalCode = DefaultPostalCode
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return &out
}
