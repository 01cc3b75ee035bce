package newport

import (
	"log"

	"github.com/omc-lab/polctl/util"
)

// SimMotor is a Motor stand-in with no hardware behind it.  It performs no
// I/O; moves mutate a single simulated position, which starts at zero.  It is
// used when the rig is not physically present.
type SimMotor struct {
	cfg AxisConfig
	pos float64
}

// NewSimMotor returns a simulated axis with the same configuration rules as
// a real Motor.
func NewSimMotor(cfg AxisConfig) (*SimMotor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SimMotor{cfg: cfg}, nil
}

// Name returns the human name of the axis.
func (s *SimMotor) Name() string { return s.cfg.Name }

// Velocity returns the configured velocity in degrees/sec.
func (s *SimMotor) Velocity() float64 { return s.cfg.Velocity }

// Bounds returns the operating bounds of the axis.
func (s *SimMotor) Bounds() util.Limiter { return s.cfg.Bounds }

// Initialize zeroes the simulated position.
func (s *SimMotor) Initialize() error {
	s.pos = 0.0
	return nil
}

// GetPos returns the simulated position.
func (s *SimMotor) GetPos() (float64, error) {
	return s.pos, nil
}

// Move applies the same bounds policy as a real Motor, then updates the
// simulated position.
func (s *SimMotor) Move(degrees float64, absolute, verbose bool) error {
	target := degrees
	if !absolute {
		target = s.pos + degrees
	}
	if !s.cfg.Bounds.Check(target) {
		err := ErrOutOfBounds{Pos: target, Limits: s.cfg.Bounds, Axis: s.cfg.Axis}
		log.Print(err)
		return err
	}
	if verbose {
		log.Printf("moving axis %d to position %g degrees", s.cfg.Axis, target)
	}
	s.pos = target
	return nil
}

// MoveAbs drives the axis to an absolute position in degrees.
func (s *SimMotor) MoveAbs(pos float64) error {
	return s.Move(pos, true, false)
}

// MoveRel drives the axis by a delta in degrees.
func (s *SimMotor) MoveRel(delta float64) error {
	return s.Move(delta, false, false)
}

// SearchHome drives the simulated axis back to its home position.
func (s *SimMotor) SearchHome() error {
	s.pos = 0.0
	return nil
}

// DefineHome accepts the redefinition without touching the simulated
// position; only simulated moves mutate it.
func (s *SimMotor) DefineHome(degrees float64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return nil
}
