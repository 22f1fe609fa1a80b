package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OriginStore tags status history entries written by the store itself.
const OriginStore = "STORE"

// Order is the root aggregate exchanged with the order service.
type Order struct {
	StoreID string       `json:"store_id" validate:"required"`
	OrderID string       `json:"order_id" validate:"required"`
	Order   OrderDetails `json:"order" validate:"required"`
}

// OrderDetails holds the full order document.
type OrderDetails struct {
	OrderID         string           `json:"order_id" validate:"required"`
	LastStatusName  StatusName       `json:"last_status_name"`
	TotalPrice      float64          `json:"total_price" validate:"gte=0"`
	CreatedAt       int64            `json:"created_at"`
	Customer        Customer         `json:"customer"`
	Store           *StoreInfo       `json:"store,omitempty"`
	Items           []OrderItem      `json:"items" validate:"required,min=1,dive"`
	Payments        []Payment        `json:"payments" validate:"dive"`
	DeliveryAddress *DeliveryAddress `json:"delivery_address,omitempty"`
	Statuses        []StatusEntry    `json:"statuses"`
}

// Customer identifies who placed the order.
type Customer struct {
	Name           string `json:"name" validate:"required"`
	TemporaryPhone string `json:"temporary_phone,omitempty"`
}

// StoreInfo is the denormalized store the order belongs to.
type StoreInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrderItem is a line of the order.
type OrderItem struct {
	Code         *int    `json:"code,omitempty"`
	Name         string  `json:"name" validate:"required"`
	Quantity     int     `json:"quantity" validate:"gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	TotalPrice   float64 `json:"total_price" validate:"gte=0"`
	Observations string  `json:"observations,omitempty"`
	Discount     float64 `json:"discount,omitempty"`
	Condiments   []any   `json:"condiments,omitempty"`
}

// Payment is how the order is (or will be) paid.
type Payment struct {
	Origin  PaymentOrigin `json:"origin" validate:"required"`
	Value   float64       `json:"value" validate:"gte=0"`
	Prepaid bool          `json:"prepaid"`
}

// DeliveryAddress is where the order is delivered.
type DeliveryAddress struct {
	StreetName   string       `json:"street_name" validate:"required"`
	StreetNumber string       `json:"street_number" validate:"required"`
	Neighborhood string       `json:"neighborhood" validate:"required"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	PostalCode   string       `json:"postal_code"`
	Country      string       `json:"country"`
	Reference    string       `json:"reference,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is the geolocation of a delivery address.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ID        *int    `json:"id,omitempty"`
}

// StatusEntry is one step of the append-only status history.
type StatusEntry struct {
	Name      StatusName `json:"name"`
	CreatedAt int64      `json:"created_at"`
	OrderID   string     `json:"order_id"`
	Origin    string     `json:"origin"`
}

// Status returns the current lifecycle status.
func (o Order) Status() StatusName {
	return o.Order.LastStatusName
}

// CreatedTime returns the creation time decoded from epoch milliseconds.
func (o Order) CreatedTime() time.Time {
	return time.UnixMilli(o.Order.CreatedAt)
}

// LineTotal returns price * quantity rounded to cents.
func (i *OrderItem) LineTotal() float64 {
	return lineTotal(i.Price, i.Quantity).InexactFloat64()
}

func lineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ItemsTotal returns the sum of every item's line total.
func (d *OrderDetails) ItemsTotal() float64 {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(lineTotal(it.Price, it.Quantity))
	}
	return total.InexactFloat64()
}

// Payment returns the first payment, which is the one shown to staff, or nil.
func (d *OrderDetails) Payment() *Payment {
	if len(d.Payments) == 0 {
		return nil
	}
	return &d.Payments[0]
}

// AppendStatus sets the current status and records it in the history.
func (d *OrderDetails) AppendStatus(status StatusName, at time.Time, origin string) {
	d.LastStatusName = status
	d.Statuses = append(d.Statuses, StatusEntry{
		Name:      status,
		CreatedAt: at.UnixMilli(),
		OrderID:   d.OrderID,
		Origin:    origin,
	})
}

// ResetHistory replaces the history with a single RECEIVED entry at the given time.
func (d *OrderDetails) ResetHistory(at time.Time) {
	d.Statuses = nil
	d.AppendStatus(StatusReceived, at, OriginStore)
}
