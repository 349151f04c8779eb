package service

import (
	"context"
	"errors"
	"fmt"

	"billpay/internal/core/ports"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const pinLength = 4

// BcryptPinService implements ports.PinService. The transaction PIN is a
// second factor on purchases, stored only as a bcrypt hash.
type BcryptPinService struct {
	profiles ports.ProfileRepository
}

// NewBcryptPinService creates a new PIN service.
func NewBcryptPinService(profiles ports.ProfileRepository) *BcryptPinService {
	return &BcryptPinService{profiles: profiles}
}

// VerifyPin checks the submitted PIN against the stored hash.
func (s *BcryptPinService) VerifyPin(ctx context.Context, userID uuid.UUID, pin string) (bool, error) {
	if err := validatePin(pin); err != nil {
		return false, err
	}

	hash, err := s.profiles.GetPinHash(ctx, userID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("loading pin hash: %w", err))
	}
	if hash == "" {
		return false, apperror.ErrNotFound("Transaction PIN")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, apperror.InternalError(fmt.Errorf("comparing pin: %w", err))
	}
	return true, nil
}

// UpdatePin hashes and stores a new transaction PIN.
func (s *BcryptPinService) UpdatePin(ctx context.Context, userID uuid.UUID, newPin string) error {
	if err := validatePin(newPin); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hashing pin: %w", err))
	}

	if err := s.profiles.SetPinHash(ctx, userID, string(hash)); err != nil {
		return apperror.InternalError(fmt.Errorf("storing pin hash: %w", err))
	}
	return nil
}

func validatePin(pin string) error {
	if len(pin) != pinLength {
		return apperror.ErrInvalidPin()
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return apperror.ErrInvalidPin()
		}
	}
	return nil
}
