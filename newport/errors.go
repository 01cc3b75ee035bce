package newport

import (
	"errors"
	"fmt"

	"github.com/omc-lab/polctl/util"
)

// espErrorCodes maps the controller's error-code strings to messages.  Codes
// absent from the table are still failures, reported with the bare code.
var espErrorCodes = map[string]string{
	"1":  "PCI COMMUNICATION TIME-OUT",
	"4":  "EMERGENCY STOP ACTIVATED",
	"6":  "COMMAND DOES NOT EXIST",
	"7":  "PARAMETER OUT OF RANGE",
	"8":  "CABLE INTERLOCK ERROR",
	"9":  "AXIS NUMBER OUT OF RANGE",
	"10": "MAXIMUM VELOCITY EXCEEDED",
	"13": "MOTOR NOT ENABLED",
	"37": "AXIS NUMBER MISSING",
	"38": "COMMAND PARAMETER MISSING",
}

// ErrNotConfirmed is generated when DefineHome is called without the caller
// having confirmed the redefinition.
var ErrNotConfirmed = errors.New("home redefinition was not confirmed, no command sent")

// ControllerError is a nonzero error code returned by the controller.
type ControllerError struct {
	// Code is the error-code string as reported, axis prefix stripped
	Code string

	// Description is the known meaning of Code, empty if the code is not in the table
	Description string

	// Device is the human name of the axis the command was issued to
	Device string

	// Cmd is the exact telegram that provoked the error
	Cmd string
}

func (e ControllerError) Error() string {
	s := fmt.Sprintf("error code %s", e.Code)
	if e.Description != "" {
		s += ": " + e.Description
	}
	if e.Device != "" {
		s += fmt.Sprintf(" on device %q", e.Device)
	}
	if e.Cmd != "" {
		s += fmt.Sprintf(" while executing command %q", e.Cmd)
	}
	return s
}

// decodeError interprets the response to a read-error-code query.  The
// controller sometimes echoes the axis number ahead of the code; when the
// first character matches the axis and there is more than one character, it
// is dropped.  A response of exactly the axis digit is left alone.
func decodeError(resp string, axis int) error {
	axisS := fmt.Sprintf("%d", axis)
	if len(resp) > 1 && resp[:1] == axisS {
		resp = resp[1:]
	}
	if resp == "0" {
		return nil
	}
	return ControllerError{Code: resp, Description: espErrorCodes[resp]}
}

// ErrOutOfBounds is generated when a computed move target falls outside the
// operating bounds of an axis.  No command is sent.
type ErrOutOfBounds struct {
	Pos    float64
	Limits util.Limiter
	Axis   int
}

func (e ErrOutOfBounds) Error() string {
	return fmt.Sprintf("desired position %g is out of operating bounds [%g, %g] of axis %d",
		e.Pos, e.Limits.Min, e.Limits.Max, e.Axis)
}

// ErrTransport is generated when a write or query still fails after the last
// retry attempt.
type ErrTransport struct {
	Device   string
	Cmd      string
	Attempts int
	Last     error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("transport failure on device %q while executing command %q, %d attempts failed: %v",
		e.Device, e.Cmd, e.Attempts, e.Last)
}

// Unwrap exposes the final transport-level error.
func (e ErrTransport) Unwrap() error {
	return e.Last
}
