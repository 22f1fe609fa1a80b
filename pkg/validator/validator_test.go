package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemInput struct {
	Name     string  `validate:"required"`
	Quantity int     `validate:"gt=0"`
	Price    float64 `validate:"gte=0"`
}

type orderInput struct {
	CustomerName string      `validate:"required,max=80"`
	OrderID      string      `validate:"required,uuid"`
	PostalCode   string      `validate:"omitempty,numeric"`
	Payment      string      `validate:"oneof=CREDIT_CARD DEBIT_CARD PIX CASH VR"`
	Items        []itemInput `validate:"min=1,dive"`
}

func validOrderInput() orderInput {
	return orderInput{
		CustomerName: "Maria",
		OrderID:      "550e8400-e29b-41d4-a716-446655440000",
		PostalCode:   "70000000",
		Payment:      "PIX",
		Items:        []itemInput{{Name: "Moqueca", Quantity: 1, Price: 89.9}},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validOrderInput()))
}

func TestValidate_MissingRequired(t *testing.T) {
	in := validOrderInput()
	in.CustomerName = ""

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "is required", fields["CustomerName"])
}

func TestValidate_UUID(t *testing.T) {
	in := validOrderInput()
	in.OrderID = "not-a-uuid"

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must be a valid UUID", fields["OrderID"])
}

func TestValidate_EmptyItems(t *testing.T) {
	in := validOrderInput()
	in.Items = nil

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must have at least 1 entries", fields["Items"])
}

func TestValidate_ItemQuantityMustBePositive(t *testing.T) {
	in := validOrderInput()
	in.Items[0].Quantity = 0

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must be greater than 0", fields["Quantity"])
}

func TestValidate_NegativePrice(t *testing.T) {
	in := validOrderInput()
	in.Items[0].Price = -1

	fields := fieldsOf(t, Validate(in))
	assert.Contains(t, fields["Price"], "greater than or equal to 0")
}

func TestValidate_OneOf(t *testing.T) {
	in := validOrderInput()
	in.Payment = "BITCOIN"

	fields := fieldsOf(t, Validate(in))
	assert.Contains(t, fields["Payment"], "one of")
}

func TestValidate_Numeric(t *testing.T) {
	in := validOrderInput()
	in.PostalCode = "70-000"

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must contain only digits", fields["PostalCode"])
}

func TestValidate_MultipleErrors(t *testing.T) {
	fields := fieldsOf(t, Validate(orderInput{}))
	assert.Contains(t, fields, "CustomerName")
	assert.Contains(t, fields, "OrderID")
	assert.Contains(t, fields, "Items")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(orderInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'CustomerName'")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"CustomerName":"Maria","OrderID":"550e8400-e29b-41d4-a716-446655440000","Payment":"CASH","Items":[{"Name":"Pirarucu","Quantity":2,"Price":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var in orderInput
	err := DecodeAndValidate(req, &in)

	require.NoError(t, err)
	assert.Equal(t, "Maria", in.CustomerName)
	require.Len(t, in.Items, 1)
	assert.Equal(t, 2, in.Items[0].Quantity)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var in orderInput
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	body := `{"CustomerName":"","OrderID":"x","Payment":"PIX","Items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var in orderInput
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
