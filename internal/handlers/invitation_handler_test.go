package handlers

import (
	"testing"
	"time"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
)

func pendingInvitation(email string, expiresIn time.Duration) *models.Invitation {
	return &models.Invitation{
		Email:     email,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().UTC().Add(expiresIn),
	}
}

func TestCheckInvitation(t *testing.T) {
	now := time.Now().UTC()

	if err := checkInvitation(pendingInvitation("ada@example.com", time.Hour), "ada@example.com", now); err != nil {
		t.Fatalf("valid invitation rejected: %v", err)
	}

	// email comparison is case-insensitive
	if err := checkInvitation(pendingInvitation("Ada@Example.com", time.Hour), "ada@example.com", now); err != nil {
		t.Fatalf("case-differing email rejected: %v", err)
	}

	// a leaked token in other hands is refused
	err := checkInvitation(pendingInvitation("ada@example.com", time.Hour), "mallory@example.com", now)
	if err == nil {
		t.Fatal("wrong email accepted")
	}
	if got := apperr.Status(err); got != 403 {
		t.Fatalf("wrong email: status = %d, want 403", got)
	}

	err = checkInvitation(pendingInvitation("ada@example.com", -time.Hour), "ada@example.com", now)
	if err == nil {
		t.Fatal("expired invitation accepted")
	}
	if got := apperr.Status(err); got != 400 {
		t.Fatalf("expired: status = %d, want 400", got)
	}

	used := pendingInvitation("ada@example.com", time.Hour)
	used.Status = models.InviteStatusAccepted
	err = checkInvitation(used, "ada@example.com", now)
	if err == nil {
		t.Fatal("used invitation accepted")
	}
	if got := apperr.Status(err); got != 409 {
		t.Fatalf("used: status = %d, want 409", got)
	}
}
