package tcp

import (
	"context"

	"go-pharmacy-reservation/internal/converter"
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/sirupsen/logrus"
)

type MedicineHandler struct {
	medicineUsecase usecase.MedicineUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewMedicineHandler(medicineUsecase usecase.MedicineUsecase, validator *validator.CustomValidator, log *logrus.Logger) *MedicineHandler {
	return &MedicineHandler{
		medicineUsecase: medicineUsecase,
		validator:       validator,
		log:             log,
	}
}

func medicineData(medicine entity.Medicine) *wire.Data {
	return &wire.Data{Medicines: []wire.MedicineRecord{converter.MedicineToRecord(medicine)}}
}

func medicineListingData(listings []store.MedicineListing) *wire.Data {
	return &wire.Data{MedicineEntries: converter.MedicineListingsToEntries(listings)}
}

func (h *MedicineHandler) GetAllMedicines(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return wire.Success("Medicines retrieved successfully", medicineListingData(h.medicineUsecase.GetAllMedicines(ctx)))
}

func (h *MedicineHandler) GetPharmacyMedicines(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.PharmacyMedicinesRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	listings, err := h.medicineUsecase.GetPharmacyMedicines(ctx, &req)
	if err != nil {
		return failure(h.log, "list pharmacy medicines", err)
	}
	return wire.Success("Medicines retrieved successfully", medicineListingData(listings))
}

func (h *MedicineHandler) SearchMedicines(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.SearchMedicinesRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}
	return wire.Success("Search completed", medicineListingData(h.medicineUsecase.SearchMedicines(ctx, &req)))
}

func (h *MedicineHandler) CreateMedicine(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.CreateMedicineRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	medicine, err := h.medicineUsecase.CreateMedicine(ctx, &req)
	if err != nil {
		return failure(h.log, "create medicine", err)
	}
	return wire.Success("Medicine created successfully", medicineData(medicine))
}

func (h *MedicineHandler) UpdateMedicine(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.UpdateMedicineRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	medicine, err := h.medicineUsecase.UpdateMedicine(ctx, &req)
	if err != nil {
		return failure(h.log, "update medicine", err)
	}
	return wire.Success("Medicine updated successfully", medicineData(medicine))
}

func (h *MedicineHandler) DeleteMedicine(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.MedicineIDRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	medicine, err := h.medicineUsecase.DeleteMedicine(ctx, req.MedicineID)
	if err != nil {
		return failure(h.log, "delete medicine", err)
	}
	return wire.Success("Medicine deleted successfully", medicineData(medicine))
}
