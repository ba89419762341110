package usecase

import (
	"context"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"

	"github.com/sirupsen/logrus"
)

type PharmacyUsecase interface {
	GetAllPharmacies(ctx context.Context) []entity.Pharmacy
	GetApprovedPharmacies(ctx context.Context) []entity.Pharmacy
	ApprovePharmacy(ctx context.Context, pharmacyID int64) (entity.Pharmacy, error)
	RejectPharmacy(ctx context.Context, pharmacyID int64) (entity.Pharmacy, error)
}

type pharmacyUsecase struct {
	store *store.Store
	log   *logrus.Logger
	audit service.AuditService
}

func NewPharmacyUsecase(st *store.Store, log *logrus.Logger, audit service.AuditService) PharmacyUsecase {
	return &pharmacyUsecase{
		store: st,
		log:   log,
		audit: audit,
	}
}

func (u *pharmacyUsecase) GetAllPharmacies(ctx context.Context) []entity.Pharmacy {
	return u.store.Pharmacies()
}

func (u *pharmacyUsecase) GetApprovedPharmacies(ctx context.Context) []entity.Pharmacy {
	return u.store.ApprovedPharmacies()
}

func (u *pharmacyUsecase) ApprovePharmacy(ctx context.Context, pharmacyID int64) (entity.Pharmacy, error) {
	return u.review(ctx, pharmacyID, entity.PharmacyStatusApproved, entity.AuditActionPharmacyApprove)
}

// RejectPharmacy is final; a rejected pharmacy cannot be approved later.
func (u *pharmacyUsecase) RejectPharmacy(ctx context.Context, pharmacyID int64) (entity.Pharmacy, error) {
	return u.review(ctx, pharmacyID, entity.PharmacyStatusRejected, entity.AuditActionPharmacyReject)
}

func (u *pharmacyUsecase) review(ctx context.Context, pharmacyID int64, status entity.PharmacyStatus, action string) (entity.Pharmacy, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Pharmacy{}, err
	}

	pharmacy, err := u.store.SetPharmacyStatus(pharmacyID, status)
	if err != nil {
		return entity.Pharmacy{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), action, "pharmacy", pharmacy.ID, pharmacy)
	u.log.Infof("Pharmacy %d is now %s, by=%d", pharmacy.ID, pharmacy.Status, actor.ID)
	return pharmacy, nil
}
