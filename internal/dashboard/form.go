package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/navisouza/delivery-api/internal/domain"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
	"github.com/navisouza/delivery-api/pkg/validator"
)

// Fixed text fields of the creation form, in focus order.
const (
	fieldCustomerName = iota
	fieldCustomerPhone
	fieldStreet
	fieldNumber
	fieldNeighborhood
	fieldReference
	fixedFieldCount
)

var fixedFieldLabels = [fixedFieldCount]string{
	"Customer name",
	"Phone",
	"Street",
	"Number",
	"Neighborhood",
	"Reference",
}

// Columns of an item row.
const (
	itemName = iota
	itemQuantity
	itemPrice
	itemFieldCount
)

type itemRow [itemFieldCount]textinput.Model

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formClose
)

// orderForm collects a new delivery order. Focus walks the fixed fields, then
// every item row, then the payment origin and the prepaid flag.
type orderForm struct {
	keys    formKeyMap
	fixed   [fixedFieldCount]textinput.Model
	items   []itemRow
	origins []domain.PaymentOrigin
	origin  int
	prepaid bool
	focus   int
	err     string
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 32
	ti.Prompt = ""
	return ti
}

func newItemRow() itemRow {
	var row itemRow
	row[itemName] = newTextInput("Item name", 80)
	row[itemQuantity] = newTextInput("1", 4)
	row[itemQuantity].SetValue("1")
	row[itemPrice] = newTextInput("0.00", 10)
	return row
}

func newOrderForm() *orderForm {
	f := &orderForm{
		keys:    defaultFormKeyMap(),
		items:   []itemRow{newItemRow()},
		origins: domain.KnownPaymentOrigins(),
		prepaid: true,
	}
	placeholders := [fixedFieldCount]string{"Full name", "Phone", "Street", "Number", "Neighborhood", "Optional"}
	for i := range f.fixed {
		f.fixed[i] = newTextInput(placeholders[i], 80)
	}
	f.fixed[fieldCustomerName].Focus()
	return f
}

func (f *orderForm) paymentFocus() int { return fixedFieldCount + len(f.items)*itemFieldCount }
func (f *orderForm) prepaidFocus() int { return f.paymentFocus() + 1 }
func (f *orderForm) focusCount() int   { return f.prepaidFocus() + 1 }

// input returns the text input at focus index i, or nil for the choice rows.
func (f *orderForm) input(i int) *textinput.Model {
	if i < fixedFieldCount {
		return &f.fixed[i]
	}
	i -= fixedFieldCount
	if row := i / itemFieldCount; row < len(f.items) {
		return &f.items[row][i%itemFieldCount]
	}
	return nil
}

func (f *orderForm) setFocus(i int) tea.Cmd {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	n := f.focusCount()
	f.focus = (i%n + n) % n
	if in := f.input(f.focus); in != nil {
		return in.Focus()
	}
	return nil
}

func (f *orderForm) addItem() tea.Cmd {
	f.items = append(f.items, newItemRow())
	return f.setFocus(fixedFieldCount + (len(f.items)-1)*itemFieldCount)
}

func (f *orderForm) removeItem() tea.Cmd {
	if len(f.items) <= 1 {
		return nil
	}
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	removed := fixedFieldCount + (len(f.items)-1)*itemFieldCount
	f.items = f.items[:len(f.items)-1]
	if f.focus >= removed {
		f.focus = removed - itemFieldCount
	}
	return f.input(f.focus).Focus()
}

// update handles a key press and reports whether the form should be submitted
// or closed.
func (f *orderForm) update(msg tea.KeyMsg) (tea.Cmd, formAction) {
	switch {
	case key.Matches(msg, f.keys.Close):
		return nil, formClose
	case key.Matches(msg, f.keys.Submit):
		return nil, formSubmit
	case key.Matches(msg, f.keys.AddItem):
		return f.addItem(), formNone
	case key.Matches(msg, f.keys.RemoveItem):
		return f.removeItem(), formNone
	}

	switch f.focus {
	case f.paymentFocus():
		if key.Matches(msg, f.keys.Toggle) {
			step := 1
			if msg.String() == "left" {
				step = len(f.origins) - 1
			}
			f.origin = (f.origin + step) % len(f.origins)
			return nil, formNone
		}
	case f.prepaidFocus():
		if key.Matches(msg, f.keys.Toggle) {
			f.prepaid = !f.prepaid
			return nil, formNone
		}
		if msg.Type == tea.KeyEnter {
			return nil, formSubmit
		}
	}

	switch {
	case key.Matches(msg, f.keys.Next):
		return f.setFocus(f.focus + 1), formNone
	case key.Matches(msg, f.keys.Prev):
		return f.setFocus(f.focus - 1), formNone
	}

	if in := f.input(f.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return cmd, formNone
	}
	return nil, formNone
}

// newOrderInput converts the form into a domain.NewOrderInput, parsing the
// numeric item fields.
func (f *orderForm) newOrderInput(storeID, storeName string) (domain.NewOrderInput, error) {
	value := func(i int) string { return strings.TrimSpace(f.fixed[i].Value()) }

	in := domain.NewOrderInput{
		StoreID:       storeID,
		StoreName:     storeName,
		CustomerName:  value(fieldCustomerName),
		CustomerPhone: value(fieldCustomerPhone),
		Address: &domain.DeliveryAddress{
			StreetName:   value(fieldStreet),
			StreetNumber: value(fieldNumber),
			Neighborhood: value(fieldNeighborhood),
			Reference:    value(fieldReference),
		},
		PaymentOrigin: f.origins[f.origin],
		Prepaid:       f.prepaid,
	}

	for i := range f.items {
		item, err := f.newOrderInputItem(i)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, item)
	}
	return in, nil
}

// newOrderInputItem parses item row i.
func (f *orderForm) newOrderInputItem(i int) (domain.ItemInput, error) {
	row := f.items[i]
	qty, err := strconv.Atoi(strings.TrimSpace(row[itemQuantity].Value()))
	if err != nil {
		return domain.ItemInput{}, apperrors.InvalidInput(fmt.Sprintf("item %d: quantity must be a whole number", i+1))
	}
	price, err := parsePrice(row[itemPrice].Value())
	if err != nil {
		return domain.ItemInput{}, apperrors.InvalidInput(fmt.Sprintf("item %d: price must be a number like 12.50", i+1))
	}
	return domain.ItemInput{
		Name:     strings.TrimSpace(row[itemName].Value()),
		Quantity: qty,
		Price:    price,
	}, nil
}

// parsePrice accepts both "12.50" and "12,50".
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Round(2).InexactFloat64(), nil
}

// build validates the form and assembles the order payload. On failure the
// message is kept on the form for display.
func (f *orderForm) build(storeID, storeName string, now time.Time) (*domain.Order, error) {
	in, err := f.newOrderInput(storeID, storeName)
	if err == nil {
		err = validator.Validate(in)
	}
	if err != nil {
		f.err = formError(err)
		return nil, err
	}

	order, err := domain.NewOrder(in, now)
	if err != nil {
		f.err = formError(err)
		return nil, err
	}
	f.err = ""
	return order, nil
}

// formError renders validation failures as one line, sorted by field.
func formError(err error) string {
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		return apperrors.Message(err)
	}
	fields := valErr.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fields[name])
	}
	return strings.Join(parts, "; ")
}
