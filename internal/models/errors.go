package models

import "errors"

// Sentinel errors classified by the API layer. Services wrap these with
// fmt.Errorf("%w: ...") so callers can test with errors.Is.
var (
	// ErrNotFound means a referenced user, card, holding or achievement does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the caller supplied an out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyGranted means the user already holds the achievement.
	// CheckAndAward swallows this; direct Award calls surface it.
	ErrAlreadyGranted = errors.New("achievement already granted")

	// ErrCardResolution means the external card catalog lookup failed.
	ErrCardResolution = errors.New("card resolution failed")
)
