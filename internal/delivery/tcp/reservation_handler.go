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

type ReservationHandler struct {
	reservationUsecase usecase.ReservationUsecase
	validator          *validator.CustomValidator
	log                *logrus.Logger
}

func NewReservationHandler(reservationUsecase usecase.ReservationUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservationUsecase: reservationUsecase,
		validator:          validator,
		log:                log,
	}
}

func reservationData(reservation entity.Reservation) *wire.Data {
	return &wire.Data{Reservations: []wire.ReservationRecord{converter.ReservationToRecord(reservation)}}
}

func reservationListingData(listings []store.ReservationListing) *wire.Data {
	return &wire.Data{ReservationEntries: converter.ReservationListingsToEntries(listings)}
}

func (h *ReservationHandler) GetAllReservations(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return wire.Success("Reservations retrieved successfully", reservationListingData(h.reservationUsecase.GetAllReservations(ctx)))
}

func (h *ReservationHandler) GetPharmacyReservations(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.ReservationListRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	listings, err := h.reservationUsecase.GetPharmacyReservations(ctx, &req)
	if err != nil {
		return failure(h.log, "list pharmacy reservations", err)
	}
	return wire.Success("Reservations retrieved successfully", reservationListingData(listings))
}

func (h *ReservationHandler) GetUserReservations(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.ReservationListRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	listings, err := h.reservationUsecase.GetUserReservations(ctx, &req)
	if err != nil {
		return failure(h.log, "list user reservations", err)
	}
	return wire.Success("Reservations retrieved successfully", reservationListingData(listings))
}

func (h *ReservationHandler) ReserveMedicine(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.ReserveRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	reservation, err := h.reservationUsecase.ReserveMedicine(ctx, &req)
	if err != nil {
		return failure(h.log, "reserve medicine", err)
	}
	return wire.Success("Reservation created successfully", reservationData(reservation))
}

func (h *ReservationHandler) ApproveReservation(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return h.transition(ctx, params, "approve reservation", "Reservation approved", h.reservationUsecase.ApproveReservation)
}

func (h *ReservationHandler) RejectReservation(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return h.transition(ctx, params, "reject reservation", "Reservation rejected", h.reservationUsecase.RejectReservation)
}

func (h *ReservationHandler) CompleteReservation(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return h.transition(ctx, params, "complete reservation", "Reservation completed", h.reservationUsecase.CompleteReservation)
}

func (h *ReservationHandler) CancelReservation(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	return h.transition(ctx, params, "cancel reservation", "Reservation cancelled", h.reservationUsecase.CancelReservation)
}

func (h *ReservationHandler) transition(
	ctx context.Context,
	params wire.Params,
	action, message string,
	apply func(context.Context, int64) (entity.Reservation, error),
) *wire.Response {
	var req dto.ReservationIDRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	reservation, err := apply(ctx, req.ReservationID)
	if err != nil {
		return failure(h.log, action, err)
	}
	return wire.Success(message, reservationData(reservation))
}
