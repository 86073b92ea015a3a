package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Payload shaped like the cart item endpoints
type cartItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=99"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeProductField bool, includeQuantityField bool) bool {
			// Create request with some fields missing
			reqMap := make(map[string]interface{})

			if includeProductField {
				reqMap["product_id"] = uuid.New().String()
			}
			if includeQuantityField {
				reqMap["quantity"] = 2
			}

			// If all fields are present, this should pass validation
			allFieldsPresent := includeProductField && includeQuantityField

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload cartItemPayload
			err := DecodeAndValidate(req, &payload)

			if allFieldsPresent {
				// Should pass validation
				return err == nil
			}
			// Should fail validation
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are properly formatted
func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			// Create request with a malformed product id
			reqMap := map[string]interface{}{
				"product_id": "not-a-uuid",
				"quantity":   2,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload cartItemPayload
			err := DecodeAndValidate(req, &payload)

			if err == nil {
				return false // Should have validation error
			}

			// Format the errors
			validationErrors := FormatValidationErrors(err)

			// Should have at least one error
			if len(validationErrors) == 0 {
				return false
			}

			// Each error should have a field and message
			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity outside valid range is rejected", prop.ForAll(
		func(quantity int) bool {
			reqMap := map[string]interface{}{
				"product_id": uuid.New().String(),
				"quantity":   quantity,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload cartItemPayload
			err := DecodeAndValidate(req, &payload)

			// Quantity must be between 1 and 99
			if quantity >= 1 && quantity <= 99 {
				return err == nil // Should pass
			}
			return err != nil // Should fail
		},
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMalformedJSONIsRejected(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/cart/items", bytes.NewReader([]byte(`{"product_id": `)))
	req.Header.Set("Content-Type", "application/json")

	var payload cartItemPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Error("expected an error for truncated JSON")
	}
}
