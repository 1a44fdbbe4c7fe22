package controllers

import "errors"

// Storage faults are surfaced to callers as this generic error; the
// underlying cause goes to the error log only.
var ErrStorage = errors.New("storage unavailable")

var (
	ErrUnknownScanType  = errors.New("unknown scan type")
	ErrUnknownStatus    = errors.New("unknown table status")
	ErrUnknownAlertType = errors.New("unknown alert type")
	ErrUnknownPriority  = errors.New("unknown priority")
	ErrBadTableNumber   = errors.New("table number must be a positive integer")
	ErrBadAlertID       = errors.New("alert id must be a positive integer")
)
