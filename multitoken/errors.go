package multitoken

import "errors"

var (
	// Registry errors
	ErrAlreadyInUse = errors.New("multitoken: token id already in use")
	ErrNotInUse     = errors.New("multitoken: token id not in use")

	// Operation precondition errors
	ErrZeroAddress           = errors.New("multitoken: zero address")
	ErrLengthMismatch        = errors.New("multitoken: batch length mismatch")
	ErrInsufficientBalance   = errors.New("multitoken: insufficient balance")
	ErrInsufficientAllowance = errors.New("multitoken: insufficient allowance")
	ErrOverflow              = errors.New("multitoken: amount overflow")
)
