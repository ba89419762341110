package tcp

import (
	"context"
	"fmt"
	"runtime/debug"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/wire"

	"github.com/sirupsen/logrus"
)

// HandlerFunc serves one decoded request. It always returns a response;
// domain failures are FAILURE responses, never errors.
type HandlerFunc func(ctx context.Context, sess *Session, params wire.Params) *wire.Response

type Router struct {
	routes             map[string]HandlerFunc
	log                *logrus.Logger
	authHandler        *AuthHandler
	userHandler        *UserHandler
	pharmacyHandler    *PharmacyHandler
	medicineHandler    *MedicineHandler
	reservationHandler *ReservationHandler
	authMiddleware     *AuthMiddleware
}

func NewRouter(
	log *logrus.Logger,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	pharmacyHandler *PharmacyHandler,
	medicineHandler *MedicineHandler,
	reservationHandler *ReservationHandler,
	authMiddleware *AuthMiddleware,
) *Router {
	return &Router{
		routes:             make(map[string]HandlerFunc),
		log:                log,
		authHandler:        authHandler,
		userHandler:        userHandler,
		pharmacyHandler:    pharmacyHandler,
		medicineHandler:    medicineHandler,
		reservationHandler: reservationHandler,
		authMiddleware:     authMiddleware,
	}
}

// Handle registers h for action. Middlewares run in the order given.
func (r *Router) Handle(action string, h HandlerFunc, middlewares ...Middleware) {
	if _, exists := r.routes[action]; exists {
		panic(fmt.Sprintf("tcp: duplicate handler for action %q", action))
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	r.routes[action] = h
}

func (r *Router) Setup() *Router {
	auth := r.authMiddleware.Authenticate
	admin := []Middleware{auth, RequireAdmin}
	pharmacist := []Middleware{auth, RequirePharmacist}
	resident := []Middleware{auth, RequireResident}

	// Public
	r.Handle(wire.ActionLogin, r.authHandler.Login)
	r.Handle(wire.ActionRegister, r.authHandler.Register)

	// Accounts
	r.Handle(wire.ActionGetAllUsers, r.userHandler.GetAllUsers, admin...)
	r.Handle(wire.ActionCreateUser, r.userHandler.CreateUser, admin...)
	r.Handle(wire.ActionUpdateUser, r.userHandler.UpdateUser, auth)
	r.Handle(wire.ActionDeleteUser, r.userHandler.DeleteUser, admin...)

	// Pharmacies
	r.Handle(wire.ActionGetAllPharmacies, r.pharmacyHandler.GetAllPharmacies, admin...)
	r.Handle(wire.ActionApprovePharmacy, r.pharmacyHandler.ApprovePharmacy, admin...)
	r.Handle(wire.ActionRejectPharmacy, r.pharmacyHandler.RejectPharmacy, admin...)
	r.Handle(wire.ActionGetApprovedPharmacies, r.pharmacyHandler.GetApprovedPharmacies, auth)

	// Medicines
	r.Handle(wire.ActionGetAllMedicines, r.medicineHandler.GetAllMedicines, admin...)
	r.Handle(wire.ActionGetPharmacyMedicines, r.medicineHandler.GetPharmacyMedicines, auth)
	r.Handle(wire.ActionSearchMedicines, r.medicineHandler.SearchMedicines, auth)
	r.Handle(wire.ActionCreateMedicine, r.medicineHandler.CreateMedicine, pharmacist...)
	r.Handle(wire.ActionUpdateMedicine, r.medicineHandler.UpdateMedicine, pharmacist...)
	r.Handle(wire.ActionDeleteMedicine, r.medicineHandler.DeleteMedicine, pharmacist...)

	// Reservations
	r.Handle(wire.ActionGetAllReservations, r.reservationHandler.GetAllReservations, admin...)
	r.Handle(wire.ActionGetPharmacyReservations, r.reservationHandler.GetPharmacyReservations,
		auth, RequireRole(entity.UserTypePharmacist, entity.UserTypeAdmin))
	r.Handle(wire.ActionGetUserReservations, r.reservationHandler.GetUserReservations,
		auth, RequireRole(entity.UserTypeResident, entity.UserTypeAdmin))
	r.Handle(wire.ActionReserveMedicine, r.reservationHandler.ReserveMedicine, resident...)
	r.Handle(wire.ActionApproveReservation, r.reservationHandler.ApproveReservation, pharmacist...)
	r.Handle(wire.ActionRejectReservation, r.reservationHandler.RejectReservation, pharmacist...)
	r.Handle(wire.ActionCompleteReservation, r.reservationHandler.CompleteReservation, pharmacist...)
	r.Handle(wire.ActionCancelReservation, r.reservationHandler.CancelReservation,
		auth, RequireRole(entity.UserTypeResident, entity.UserTypeAdmin))

	return r
}

// Dispatch decodes one request envelope and runs its handler. It never
// fails: malformed requests, unknown actions and handler panics all
// become FAILURE responses.
func (r *Router) Dispatch(ctx context.Context, sess *Session, envelope []byte) (response *wire.Response) {
	req, err := wire.DecodeRequest(envelope)
	if err != nil {
		r.log.Debugf("Malformed request on session %s: %v", sess.ID, err)
		return wire.Failuref("malformed request: %v", err)
	}

	handler, ok := r.routes[req.Action]
	if !ok {
		return wire.Failuref("unknown action: %s", req.Action)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.log.WithFields(logrus.Fields{
				"action":  req.Action,
				"session": sess.ID,
			}).Errorf("Handler panic: %v\n%s", recovered, debug.Stack())
			response = wire.Failuref("%s failed: %v", req.Action, recovered)
		}
	}()

	response = handler(ctx, sess, req.Params)
	if response == nil {
		response = wire.Failure(internalErrorMessage)
	}
	r.log.WithFields(logrus.Fields{
		"action":  req.Action,
		"session": sess.ID,
		"status":  response.Status,
	}).Debug("Request handled")
	return response
}
