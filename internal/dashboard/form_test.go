package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navisouza/delivery-api/internal/domain"
)

func filledForm() *orderForm {
	f := newOrderForm()
	f.fixed[fieldCustomerName].SetValue("Maria Silva")
	f.fixed[fieldStreet].SetValue("SQS 308")
	f.fixed[fieldNumber].SetValue("12")
	f.fixed[fieldNeighborhood].SetValue("Asa Sul")
	f.items[0][itemName].SetValue("Moqueca")
	f.items[0][itemQuantity].SetValue("2")
	f.items[0][itemPrice].SetValue("49.90")
	return f
}

func TestOrderForm_FocusWalksEveryField(t *testing.T) {
	f := newOrderForm()
	require.Equal(t, fieldCustomerName, f.focus)
	assert.True(t, f.fixed[fieldCustomerName].Focused())

	f.update(keyMsg("tab"))
	assert.Equal(t, fieldCustomerPhone, f.focus)
	assert.False(t, f.fixed[fieldCustomerName].Focused())
	assert.True(t, f.fixed[fieldCustomerPhone].Focused())

	for i := 0; i < f.focusCount()-1; i++ {
		f.update(keyMsg("tab"))
	}
	assert.Equal(t, fieldCustomerName, f.focus, "focus wraps around")
}

func TestOrderForm_AddAndRemoveItems(t *testing.T) {
	f := newOrderForm()

	f.update(keyMsg("ctrl+n"))
	require.Len(t, f.items, 2)
	assert.Equal(t, fixedFieldCount+itemFieldCount, f.focus)
	assert.True(t, f.items[1][itemName].Focused())

	f.update(keyMsg("ctrl+r"))
	require.Len(t, f.items, 1)
	assert.Equal(t, fixedFieldCount, f.focus)

	f.update(keyMsg("ctrl+r"))
	assert.Len(t, f.items, 1, "the last item cannot be removed")
}

func TestOrderForm_PaymentAndPrepaidRows(t *testing.T) {
	f := newOrderForm()
	f.setFocus(f.paymentFocus())

	f.update(keyMsg("right"))
	assert.Equal(t, domain.PaymentDebitCard, f.origins[f.origin])
	f.update(keyMsg("left"))
	f.update(keyMsg("left"))
	assert.Equal(t, domain.PaymentVR, f.origins[f.origin])

	f.setFocus(f.prepaidFocus())
	require.True(t, f.prepaid)
	f.update(keyMsg(" "))
	assert.False(t, f.prepaid)

	_, action := f.update(keyMsg("enter"))
	assert.Equal(t, formSubmit, action)
}

func TestOrderForm_TypingGoesToFocusedInput(t *testing.T) {
	f := newOrderForm()
	f.update(keyMsg("Ana"))
	assert.Equal(t, "Ana", f.fixed[fieldCustomerName].Value())
	assert.Empty(t, f.fixed[fieldCustomerPhone].Value())
}

func TestOrderForm_Build(t *testing.T) {
	f := filledForm()
	f.items = append(f.items, newItemRow())
	f.items[1][itemName].SetValue("Suco")
	f.items[1][itemPrice].SetValue("0,10")

	o, err := f.build("COCO-BAMBU-01", "Coco Bambu Brasília", testNow)
	require.NoError(t, err)

	assert.Equal(t, 99.9, o.Order.TotalPrice)
	require.Len(t, o.Order.Items, 2)
	assert.Equal(t, 99.8, o.Order.Items[0].TotalPrice)
	require.NotNil(t, o.Order.DeliveryAddress)
	assert.Equal(t, domain.DefaultCity, o.Order.DeliveryAddress.City)
	require.Len(t, o.Order.Payments, 1)
	assert.Equal(t, domain.PaymentCreditCard, o.Order.Payments[0].Origin)
	assert.True(t, o.Order.Payments[0].Prepaid)
	assert.Equal(t, 99.9, o.Order.Payments[0].Value)
	require.NotNil(t, o.Order.Store)
	assert.Equal(t, "Coco Bambu Brasília", o.Order.Store.Name)
	assert.Empty(t, f.err)
}

func TestOrderForm_BuildRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name  string
		qty   string
		price string
		want  string
	}{
		{"quantity text", "two", "1.00", "item 1: quantity must be a whole number"},
		{"price text", "1", "abc", "item 1: price must be a number like 12.50"},
		{"zero quantity", "0", "1.00", "Quantity must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filledForm()
			f.items[0][itemQuantity].SetValue(tt.qty)
			f.items[0][itemPrice].SetValue(tt.price)

			_, err := f.build("COCO-BAMBU-01", "", testNow)
			require.Error(t, err)
			assert.Contains(t, f.err, tt.want)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.50", 12.5},
		{"12,50", 12.5},
		{" 3 ", 3},
		{"", 0},
		{"0.005", 0.01},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parsePrice("1.2.3")
	assert.Error(t, err)
}
