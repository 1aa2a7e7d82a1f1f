package http

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's binding flow.
type RequestValidator struct {
	validate *validatorv10.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validatorv10.New()

	// The payload matching the declared kind has to be present; tag
	// validation alone cannot express the cross-field rule.
	v.RegisterStructValidation(createDonationStructValidation, CreateDonationRequest{})

	return &RequestValidator{validate: v}
}

func (r *RequestValidator) Validate(i interface{}) error {
	return r.validate.Struct(i)
}

func createDonationStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateDonationRequest)

	switch req.Kind {
	case "food":
		if req.Food == nil {
			sl.ReportError(req.Food, "food", "Food", "required_for_kind", fmt.Sprintf("kind %s requires a food payload", req.Kind))
		}
	case "clothes":
		if req.Clothes == nil {
			sl.ReportError(req.Clothes, "clothes", "Clothes", "required_for_kind", fmt.Sprintf("kind %s requires a clothes payload", req.Kind))
		}
	}
}
