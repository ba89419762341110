package usecase

import (
	"context"
	"fmt"

	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"

	"github.com/sirupsen/logrus"
)

var ErrPharmacyRequired = fmt.Errorf("%w: pharmacyId is required", store.ErrInvalidInput)

type MedicineUsecase interface {
	GetAllMedicines(ctx context.Context) []store.MedicineListing
	GetPharmacyMedicines(ctx context.Context, req *dto.PharmacyMedicinesRequest) ([]store.MedicineListing, error)
	SearchMedicines(ctx context.Context, req *dto.SearchMedicinesRequest) []store.MedicineListing
	CreateMedicine(ctx context.Context, req *dto.CreateMedicineRequest) (entity.Medicine, error)
	UpdateMedicine(ctx context.Context, req *dto.UpdateMedicineRequest) (entity.Medicine, error)
	DeleteMedicine(ctx context.Context, medicineID int64) (entity.Medicine, error)
}

type medicineUsecase struct {
	store *store.Store
	log   *logrus.Logger
	audit service.AuditService
}

func NewMedicineUsecase(st *store.Store, log *logrus.Logger, audit service.AuditService) MedicineUsecase {
	return &medicineUsecase{
		store: st,
		log:   log,
		audit: audit,
	}
}

func (u *medicineUsecase) GetAllMedicines(ctx context.Context) []store.MedicineListing {
	return u.store.Medicines(store.MedicineFilter{})
}

// GetPharmacyMedicines lists one pharmacy's catalogue as the caller may see
// it. Residents only see approved pharmacies and active medicines;
// pharmacists only see their own pharmacy.
func (u *medicineUsecase) GetPharmacyMedicines(ctx context.Context, req *dto.PharmacyMedicinesRequest) ([]store.MedicineListing, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	filter := store.MedicineFilter{PharmacyID: req.PharmacyID}
	switch {
	case actor.IsPharmacist():
		if filter.PharmacyID == 0 {
			filter.PharmacyID = actor.PharmacyID
		}
		if filter.PharmacyID != actor.PharmacyID {
			return nil, fmt.Errorf("%w: pharmacists may only view their own pharmacy", store.ErrNotAuthorized)
		}
	case actor.IsResident():
		if filter.PharmacyID == 0 {
			return nil, ErrPharmacyRequired
		}
		pharmacy, err := u.store.Pharmacy(filter.PharmacyID)
		if err != nil {
			return nil, err
		}
		if !pharmacy.IsApproved() {
			return nil, store.ErrPharmacyNotFound
		}
		filter.ActiveOnly = true
	default:
		if filter.PharmacyID == 0 {
			return nil, ErrPharmacyRequired
		}
		if _, err := u.store.Pharmacy(filter.PharmacyID); err != nil {
			return nil, err
		}
	}
	return u.store.Medicines(filter), nil
}

func (u *medicineUsecase) SearchMedicines(ctx context.Context, req *dto.SearchMedicinesRequest) []store.MedicineListing {
	return u.store.Medicines(store.MedicineFilter{
		PharmacyID:   req.PharmacyID,
		Query:        req.Query,
		ApprovedOnly: true,
		ActiveOnly:   true,
	})
}

func (u *medicineUsecase) CreateMedicine(ctx context.Context, req *dto.CreateMedicineRequest) (entity.Medicine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Medicine{}, err
	}

	in := store.NewMedicine{
		BrandName:   req.BrandName,
		GenericName: req.GenericName,
		Dosage:      req.Dosage,
		DosageForm:  req.DosageForm,
		Category:    req.Category,
		Status:      entity.MedicineStatus(req.Status),
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Quantity != nil {
		in.QuantityAvailable = *req.Quantity
	}

	medicine, err := u.store.CreateMedicine(actor.PharmacyID, in)
	if err != nil {
		return entity.Medicine{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionMedicineCreate, "medicine", medicine.ID, medicine)
	u.log.Infof("Medicine created: id=%d, pharmacy=%d", medicine.ID, medicine.PharmacyID)
	return medicine, nil
}

func (u *medicineUsecase) UpdateMedicine(ctx context.Context, req *dto.UpdateMedicineRequest) (entity.Medicine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Medicine{}, err
	}

	update := store.MedicineUpdate{
		BrandName:         req.BrandName,
		GenericName:       req.GenericName,
		Dosage:            req.Dosage,
		DosageForm:        req.DosageForm,
		Price:             req.Price,
		QuantityAvailable: req.Quantity,
		Category:          req.Category,
	}
	if req.Status != nil {
		status := entity.MedicineStatus(*req.Status)
		update.Status = &status
	}

	medicine, err := u.store.UpdateMedicine(actor.PharmacyID, req.MedicineID, update)
	if err != nil {
		return entity.Medicine{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionMedicineUpdate, "medicine", medicine.ID, medicine)
	u.log.Infof("Medicine updated: id=%d, version=%d", medicine.ID, medicine.Version)
	return medicine, nil
}

func (u *medicineUsecase) DeleteMedicine(ctx context.Context, medicineID int64) (entity.Medicine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Medicine{}, err
	}

	medicine, err := u.store.DeleteMedicine(actor.PharmacyID, medicineID)
	if err != nil {
		return entity.Medicine{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionMedicineDelete, "medicine", medicine.ID, nil)
	u.log.Infof("Medicine deleted: id=%d", medicine.ID)
	return medicine, nil
}
