package wire

// Actions understood by the server.
const (
	ActionLogin    = "LOGIN"
	ActionRegister = "REGISTER"

	ActionGetAllUsers = "GET_ALL_USERS"
	ActionCreateUser  = "CREATE_USER"
	ActionUpdateUser  = "UPDATE_USER"
	ActionDeleteUser  = "DELETE_USER"

	ActionGetAllPharmacies      = "GET_ALL_PHARMACIES"
	ActionApprovePharmacy       = "APPROVE_PHARMACY"
	ActionRejectPharmacy        = "REJECT_PHARMACY"
	ActionGetApprovedPharmacies = "GET_APPROVED_PHARMACIES"

	ActionGetAllMedicines      = "GET_ALL_MEDICINES"
	ActionGetPharmacyMedicines = "GET_PHARMACY_MEDICINES"
	ActionSearchMedicines      = "SEARCH_MEDICINES"
	ActionCreateMedicine       = "CREATE_MEDICINE"
	ActionUpdateMedicine       = "UPDATE_MEDICINE"
	ActionDeleteMedicine       = "DELETE_MEDICINE"

	ActionGetAllReservations      = "GET_ALL_RESERVATIONS"
	ActionGetPharmacyReservations = "GET_PHARMACY_RESERVATIONS"
	ActionGetUserReservations     = "GET_USER_RESERVATIONS"
	ActionReserveMedicine         = "RESERVE_MEDICINE"
	ActionApproveReservation      = "APPROVE_RESERVATION"
	ActionRejectReservation       = "REJECT_RESERVATION"
	ActionCompleteReservation     = "COMPLETE_RESERVATION"
	ActionCancelReservation       = "CANCEL_RESERVATION"
)

// ParamToken carries a session token issued by LOGIN. A request bearing it
// is authenticated even on a connection that never logged in.
const ParamToken = "token"
