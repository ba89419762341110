package entity

import (
	"testing"
	"time"
)

func TestReservationStatusCanTransition(t *testing.T) {
	all := []ReservationStatus{
		ReservationStatusPending,
		ReservationStatusApproved,
		ReservationStatusRejected,
		ReservationStatusCompleted,
		ReservationStatusCancelled,
		ReservationStatusExpired,
	}
	allowed := map[[2]ReservationStatus]bool{
		{ReservationStatusPending, ReservationStatusApproved}:   true,
		{ReservationStatusPending, ReservationStatusRejected}:   true,
		{ReservationStatusPending, ReservationStatusCancelled}:  true,
		{ReservationStatusPending, ReservationStatusExpired}:    true,
		{ReservationStatusApproved, ReservationStatusCompleted}: true,
		{ReservationStatusApproved, ReservationStatusCancelled}: true,
		{ReservationStatusApproved, ReservationStatusExpired}:   true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ReservationStatus{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: CanTransition = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestReservationIsDue(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := Reservation{Status: ReservationStatusApproved, ExpirationTime: expires}

	if r.IsDue(expires.Add(-time.Second)) {
		t.Error("due before expiration time")
	}
	if !r.IsDue(expires) {
		t.Error("not due at expiration time")
	}
	r.Status = ReservationStatusCompleted
	if r.IsDue(expires.Add(time.Hour)) {
		t.Error("completed reservation reported due")
	}
}
