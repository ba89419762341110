package tcp

import (
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/validator"
)

// decode binds params into req and validates it. A non-nil response is
// the FAILURE to return.
func decode(v *validator.CustomValidator, params wire.Params, req interface{}) *wire.Response {
	if err := dto.Bind(params.Map(), req); err != nil {
		return wire.Failuref("invalid request parameters: %v", err)
	}
	if err := v.Validate(req); err != nil {
		return wire.Failure(v.Message(err))
	}
	return nil
}
