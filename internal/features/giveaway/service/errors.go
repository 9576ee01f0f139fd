package service

import "errors"

var (
	// ErrNoEligibleCandidate means a random draw scanned every remaining
	// participant and none passed the subscription re-check.
	ErrNoEligibleCandidate = errors.New("no eligible candidate left")

	// ErrAlreadyWinner means the chosen participant had been marked before.
	ErrAlreadyWinner = errors.New("participant is already a winner")

	// ErrCandidateNotEligible means a manually named candidate failed the
	// subscription check.
	ErrCandidateNotEligible = errors.New("candidate is not subscribed to the required channels")
)
