package newport

// QuarterWaveOffset is the fixed geometric offset in degrees between the
// linear polarizer and the quarter-wave plate.
//
// Hardware definitions: linear polarizer 0 degrees = vertical / S /
// perpendicular; quarter-wave plate 0 degrees = horizontal.
const QuarterWaveOffset = 45.0

// Polarizer composes the linear polarizer and quarter-wave plate axes into a
// single polarization-angle control.
type Polarizer struct {
	// LinPolarizer is the linear polarizer axis
	LinPolarizer Axis

	// QuarterWave is the quarter-wave plate axis
	QuarterWave Axis
}

// NewPolarizer returns a Polarizer over the two axes.
func NewPolarizer(linPolarizer, quarterWave Axis) *Polarizer {
	return &Polarizer{LinPolarizer: linPolarizer, QuarterWave: quarterWave}
}

// Initialize initializes both axes.
func (p *Polarizer) Initialize() error {
	if err := p.LinPolarizer.Initialize(); err != nil {
		return err
	}
	return p.QuarterWave.Initialize()
}

// Set drives the linear polarizer to degrees, then slaves the quarter-wave
// plate to the achieved position plus the fixed offset.  The second target is
// derived from the position the controller reports, not the one requested,
// so controller-side rounding or partial motion cannot desynchronize the
// pair: even when the linear polarizer move errors, the plate is re-slaved
// to wherever the polarizer actually stopped.  The first error encountered
// is returned.
//
// A position readback failure aborts; no quarter-wave target can be derived
// without it.  There is no rollback: if the quarter-wave move is rejected or
// fails, the linear polarizer stays where it went.
func (p *Polarizer) Set(degrees float64, verbose bool) error {
	moveErr := p.LinPolarizer.Move(degrees, true, verbose)
	achieved, posErr := p.LinPolarizer.GetPos()
	if posErr != nil {
		if moveErr != nil {
			return moveErr
		}
		return posErr
	}
	qwpErr := p.QuarterWave.Move(achieved+QuarterWaveOffset, true, verbose)
	if moveErr != nil {
		return moveErr
	}
	return qwpErr
}

// Angle returns the current polarization angle, the position of the linear
// polarizer axis.
func (p *Polarizer) Angle() (float64, error) {
	return p.LinPolarizer.GetPos()
}
