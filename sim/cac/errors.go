package cac

import "errors"

// ErrInvalidConfiguration is returned when thresholds or PHY parameters are
// out of range. It is fatal to engine setup.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrInvalidRequest is returned when a flow request has a non-positive packet
// size or data rate. Callers must not proceed to admission.
var ErrInvalidRequest = errors.New("invalid flow request")
