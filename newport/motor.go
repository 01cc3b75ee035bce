package newport

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/omc-lab/polctl/comm"
	"github.com/omc-lab/polctl/util"

	"github.com/tarm/serial"
)

var (
	// ErrVelocityNotPositive is generated when an axis is configured with a
	// velocity <= 0.
	ErrVelocityNotPositive = errors.New("velocity must be positive")

	// ErrBoundsInverted is generated when an axis is configured with min > max.
	ErrBoundsInverted = errors.New("bounds are inverted, min must be <= max")
)

// Axis is one independently addressable rotational degree of freedom on a
// motion controller.
type Axis interface {
	// Initialize configures the axis; no motion may be commanded before it
	Initialize() error

	// GetPos returns the current position in degrees
	GetPos() (float64, error)

	// Move drives the axis to degrees (absolute) or by degrees (relative).
	// Targets outside the configured bounds are rejected before any I/O.
	// verbose narrates the motion to the log, with no behavioral effect.
	Move(degrees float64, absolute, verbose bool) error

	// MoveAbs drives the axis to an absolute position in degrees
	MoveAbs(pos float64) error

	// MoveRel drives the axis by a delta in degrees
	MoveRel(delta float64) error

	// DefineHome relabels the current position as degrees.  confirmed is the
	// caller's already-made decision; interactive prompting lives outside
	// this package.
	DefineHome(degrees float64, confirmed bool) error
}

// AxisConfig carries the per-axis settings, fixed at construction.
type AxisConfig struct {
	// Name is the human name of the axis, used in diagnostics, e.g. "linear polarizer"
	Name string

	// Axis is the controller axis number the commands are prefixed with
	Axis int

	// Bounds is the inclusive range of reachable positions in degrees
	Bounds util.Limiter

	// Velocity is the speed configured at initialization, degrees/sec
	Velocity float64
}

func (cfg AxisConfig) validate() error {
	if cfg.Velocity <= 0 {
		return ErrVelocityNotPositive
	}
	if !cfg.Bounds.Valid() {
		return ErrBoundsInverted
	}
	return nil
}

// Motor drives one axis of an ESP-family motion controller.  It is not safe
// for concurrent use; the controller-side wait-for-stop gate serializes the
// physical motion, and callers serialize access to the transport.
type Motor struct {
	cfg AxisConfig
	t   comm.Transport
}

// NewMotor returns a Motor for one axis, speaking through t.  The transport
// is owned by the discovery/connection layer; the motor never closes it.
func NewMotor(cfg AxisConfig, t comm.Transport) (*Motor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Motor{cfg: cfg, t: t}, nil
}

// MakeSerConf makes a serial.Config with the ESP's parity, baud, etc, set.
func MakeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        19200,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 1 * time.Second}
}

// Name returns the human name of the axis.
func (m *Motor) Name() string { return m.cfg.Name }

// Velocity returns the configured velocity in degrees/sec.
func (m *Motor) Velocity() float64 { return m.cfg.Velocity }

// Bounds returns the operating bounds of the axis.
func (m *Motor) Bounds() util.Limiter { return m.cfg.Bounds }

// Initialize sets the velocity and home search mode, after which the axis is
// ready for motion commands.
func (m *Motor) Initialize() error {
	err := m.SendCommand("set-velocity", formatFloat(m.cfg.Velocity))
	if err != nil {
		return err
	}
	return m.SendCommand("set-home-search-mode", "0")
}

// GetPos queries the controller for the current position of the axis.
func (m *Motor) GetPos() (float64, error) {
	resp, err := queryWithRetry(m.t, m.cfg.Name, positionQuery(m.cfg.Axis))
	if err != nil {
		return 0, err
	}
	return parsePosition(resp)
}

// Move computes the absolute target and drives the axis there.  Targets
// outside the bounds return ErrOutOfBounds with no command sent; targets
// exactly on a bound are allowed.
func (m *Motor) Move(degrees float64, absolute, verbose bool) error {
	target := degrees
	if !absolute {
		pos, err := m.GetPos()
		if err != nil {
			return err
		}
		target = pos + degrees
	}
	if !m.cfg.Bounds.Check(target) {
		err := ErrOutOfBounds{Pos: target, Limits: m.cfg.Bounds, Axis: m.cfg.Axis}
		log.Print(err)
		return err
	}
	if verbose {
		log.Printf("moving axis %d to position %g degrees", m.cfg.Axis, target)
	}
	return m.SendCommand("move-abs", formatFloat(target))
}

// MoveAbs drives the axis to an absolute position in degrees.
func (m *Motor) MoveAbs(pos float64) error {
	return m.Move(pos, true, false)
}

// MoveRel drives the axis by a delta in degrees.
func (m *Motor) MoveRel(delta float64) error {
	return m.Move(delta, false, false)
}

// DefineHome relabels the current position as degrees.  The confirmation is
// decided by the caller ahead of time.
func (m *Motor) DefineHome(degrees float64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return m.SendCommand("define-home", formatFloat(degrees))
}

// SearchHome starts the controller's home search on the axis.
func (m *Motor) SearchHome() error {
	return m.SendCommand("search-home", "")
}

// SendCommand runs the full pipeline for one logical operation: build the
// telegram, write it with retry, query the error code with retry, and decode
// the response.  Controller errors carry the device name and the exact
// telegram for diagnosis.
func (m *Motor) SendCommand(alias, parameter string) error {
	c, err := commandFromAlias(alias)
	if err != nil {
		return err
	}
	tele := makeTelegram(c, m.cfg.Axis, parameter)
	if len(tele) > RemoteBufferSize {
		return ErrBufferWouldOverflow
	}
	if err := writeWithRetry(m.t, m.cfg.Name, tele); err != nil {
		return err
	}
	resp, err := queryWithRetry(m.t, m.cfg.Name, readError.Cmd)
	if err != nil {
		return err
	}
	err = decodeError(resp, m.cfg.Axis)
	if ce, ok := err.(ControllerError); ok {
		ce.Device = m.cfg.Name
		ce.Cmd = tele
		log.Print(ce)
		return ce
	}
	return err
}

// Raw sends text to the controller as-is.  Strings containing a ? are treated
// as queries and their response returned.
func (m *Motor) Raw(s string) (string, error) {
	if strings.Contains(s, "?") {
		return queryWithRetry(m.t, m.cfg.Name, s)
	}
	err := writeWithRetry(m.t, m.cfg.Name, s)
	return "", err
}
