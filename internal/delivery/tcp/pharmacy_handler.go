package tcp

import (
	"context"

	"go-pharmacy-reservation/internal/converter"
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/sirupsen/logrus"
)

type PharmacyHandler struct {
	pharmacyUsecase usecase.PharmacyUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewPharmacyHandler(pharmacyUsecase usecase.PharmacyUsecase, validator *validator.CustomValidator, log *logrus.Logger) *PharmacyHandler {
	return &PharmacyHandler{
		pharmacyUsecase: pharmacyUsecase,
		validator:       validator,
		log:             log,
	}
}

func pharmacyData(pharmacies ...entity.Pharmacy) *wire.Data {
	return &wire.Data{Pharmacies: converter.PharmaciesToRecords(pharmacies)}
}

func (h *PharmacyHandler) GetAllPharmacies(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return wire.Success("Pharmacies retrieved successfully", pharmacyData(h.pharmacyUsecase.GetAllPharmacies(ctx)...))
}

func (h *PharmacyHandler) GetApprovedPharmacies(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return wire.Success("Pharmacies retrieved successfully", pharmacyData(h.pharmacyUsecase.GetApprovedPharmacies(ctx)...))
}

func (h *PharmacyHandler) ApprovePharmacy(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.PharmacyIDRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	pharmacy, err := h.pharmacyUsecase.ApprovePharmacy(ctx, req.PharmacyID)
	if err != nil {
		return failure(h.log, "approve pharmacy", err)
	}
	return wire.Success("Pharmacy approved", pharmacyData(pharmacy))
}

func (h *PharmacyHandler) RejectPharmacy(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.PharmacyIDRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	pharmacy, err := h.pharmacyUsecase.RejectPharmacy(ctx, req.PharmacyID)
	if err != nil {
		return failure(h.log, "reject pharmacy", err)
	}
	return wire.Success("Pharmacy rejected", pharmacyData(pharmacy))
}
