package service

import "errors"

var (
	// ErrForbidden indicates the acting user lacks membership or role for
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates a request that is well-formed but
	// inconsistent, e.g. a payer who is not a group member.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates an illegal settlement transition, e.g.
	// cancelling a confirmed settlement.
	ErrInvalidState = errors.New("invalid state")
)
