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

var (
	ErrUserRequired         = fmt.Errorf("%w: userId is required", store.ErrInvalidInput)
	ErrForeignReservation   = fmt.Errorf("%w: reservation belongs to another account", store.ErrNotAuthorized)
	ErrForeignPharmacyOrder = fmt.Errorf("%w: reservation belongs to another pharmacy", store.ErrNotAuthorized)
)

type ReservationUsecase interface {
	GetAllReservations(ctx context.Context) []store.ReservationListing
	GetPharmacyReservations(ctx context.Context, req *dto.ReservationListRequest) ([]store.ReservationListing, error)
	GetUserReservations(ctx context.Context, req *dto.ReservationListRequest) ([]store.ReservationListing, error)
	ReserveMedicine(ctx context.Context, req *dto.ReserveRequest) (entity.Reservation, error)
	ApproveReservation(ctx context.Context, reservationID int64) (entity.Reservation, error)
	RejectReservation(ctx context.Context, reservationID int64) (entity.Reservation, error)
	CompleteReservation(ctx context.Context, reservationID int64) (entity.Reservation, error)
	CancelReservation(ctx context.Context, reservationID int64) (entity.Reservation, error)
}

type reservationUsecase struct {
	store *store.Store
	log   *logrus.Logger
	audit service.AuditService
}

func NewReservationUsecase(st *store.Store, log *logrus.Logger, audit service.AuditService) ReservationUsecase {
	return &reservationUsecase{
		store: st,
		log:   log,
		audit: audit,
	}
}

func (u *reservationUsecase) GetAllReservations(ctx context.Context) []store.ReservationListing {
	return u.store.Reservations(store.ReservationFilter{})
}

// GetPharmacyReservations lists a pharmacy's reservations. Pharmacists are
// pinned to their own pharmacy.
func (u *reservationUsecase) GetPharmacyReservations(ctx context.Context, req *dto.ReservationListRequest) ([]store.ReservationListing, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	filter := store.ReservationFilter{
		PharmacyID: req.PharmacyID,
		Status:     entity.ReservationStatus(req.Status),
	}
	if actor.IsPharmacist() {
		if filter.PharmacyID == 0 {
			filter.PharmacyID = actor.PharmacyID
		}
		if filter.PharmacyID != actor.PharmacyID {
			return nil, fmt.Errorf("%w: pharmacists may only view their own pharmacy", store.ErrNotAuthorized)
		}
	} else if filter.PharmacyID == 0 {
		return nil, ErrPharmacyRequired
	}
	return u.store.Reservations(filter), nil
}

// GetUserReservations lists one account's reservations. Residents are
// pinned to themselves.
func (u *reservationUsecase) GetUserReservations(ctx context.Context, req *dto.ReservationListRequest) ([]store.ReservationListing, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	filter := store.ReservationFilter{
		UserID: req.UserID,
		Status: entity.ReservationStatus(req.Status),
	}
	if !actor.IsAdmin() {
		if filter.UserID == 0 {
			filter.UserID = actor.ID
		}
		if filter.UserID != actor.ID {
			return nil, ErrForeignReservation
		}
	} else if filter.UserID == 0 {
		return nil, ErrUserRequired
	}
	return u.store.Reservations(filter), nil
}

func (u *reservationUsecase) ReserveMedicine(ctx context.Context, req *dto.ReserveRequest) (entity.Reservation, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Reservation{}, err
	}

	reservation, err := u.store.Reserve(store.NewReservation{
		UserID:        actor.ID,
		MedicineID:    req.MedicineID,
		Quantity:      req.Quantity,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		u.log.Debugf("Reservation refused for user %d: %v", actor.ID, err)
		return entity.Reservation{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionReservationCreate, "reservation", reservation.ID, reservation)
	u.log.Infof("Reservation created: id=%d, medicine=%d, quantity=%d", reservation.ID, reservation.MedicineID, reservation.Quantity)
	return reservation, nil
}

func (u *reservationUsecase) ApproveReservation(ctx context.Context, reservationID int64) (entity.Reservation, error) {
	return u.pharmacyTransition(ctx, reservationID, entity.ReservationStatusApproved, entity.AuditActionReservationApprove)
}

func (u *reservationUsecase) RejectReservation(ctx context.Context, reservationID int64) (entity.Reservation, error) {
	return u.pharmacyTransition(ctx, reservationID, entity.ReservationStatusRejected, entity.AuditActionReservationReject)
}

func (u *reservationUsecase) CompleteReservation(ctx context.Context, reservationID int64) (entity.Reservation, error) {
	return u.pharmacyTransition(ctx, reservationID, entity.ReservationStatusCompleted, entity.AuditActionReservationDone)
}

// CancelReservation withdraws an open reservation. Residents may cancel
// their own; administrators may cancel any.
func (u *reservationUsecase) CancelReservation(ctx context.Context, reservationID int64) (entity.Reservation, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Reservation{}, err
	}

	guard := func(r entity.Reservation) error {
		if !actor.IsAdmin() && r.UserID != actor.ID {
			return ErrForeignReservation
		}
		return nil
	}
	return u.transition(ctx, actor, reservationID, entity.ReservationStatusCancelled, entity.AuditActionReservationCancel, guard)
}

func (u *reservationUsecase) pharmacyTransition(ctx context.Context, reservationID int64, target entity.ReservationStatus, action string) (entity.Reservation, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.Reservation{}, err
	}

	guard := func(r entity.Reservation) error {
		if r.PharmacyID != actor.PharmacyID {
			return ErrForeignPharmacyOrder
		}
		return nil
	}
	return u.transition(ctx, actor, reservationID, target, action, guard)
}

func (u *reservationUsecase) transition(ctx context.Context, actor entity.User, reservationID int64, target entity.ReservationStatus, action string, guard store.Guard) (entity.Reservation, error) {
	reservation, err := u.store.Transition(reservationID, target, guard)
	if err != nil {
		return entity.Reservation{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), action, "reservation", reservation.ID, reservation)
	u.log.Infof("Reservation %d is now %s, by=%d", reservation.ID, reservation.Status, actor.ID)
	return reservation, nil
}
