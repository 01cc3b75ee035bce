// Package motion provides an HTTP interface to motion-controlled axes.
package motion

import (
	"encoding/json"
	"go/types"
	"net/http"
	"strconv"

	"github.com/omc-lab/polctl/generichttp"
	"github.com/omc-lab/polctl/util"
)

// Mover describes an axis with position-related methods.
type Mover interface {
	// GetPos gets the current position of the axis
	GetPos() (float64, error)

	// MoveAbs moves the axis to an absolute position
	MoveAbs(float64) error

	// MoveRel moves the axis a relative amount
	MoveRel(float64) error
}

// Initializer is an axis which must be initialized before use.
type Initializer interface {
	// Initialize the axis, configuring the control electronics
	Initialize() error
}

// HomeDefiner is an axis which can relabel its current position.  The bool
// is the caller's already-made confirmation; unconfirmed calls send nothing.
type HomeDefiner interface {
	DefineHome(float64, bool) error
}

// Homer is an axis which can search for its home reference mark.
type Homer interface {
	// SearchHome starts the controller's home search
	SearchHome() error
}

// Speeder is an axis with a velocity setpoint.
type Speeder interface {
	// Velocity returns the velocity setpoint
	Velocity() float64
}

// Bounded is an axis with software travel limits.
type Bounded interface {
	// Bounds returns the inclusive limits on motion
	Bounds() util.Limiter
}

// HomeT is the JSON body of a home redefinition request.
type HomeT struct {
	F64       float64 `json:"f64"`
	Confirmed bool    `json:"confirmed"`
}

func popRelative(r *http.Request) (bool, error) {
	relative := r.URL.Query().Get("relative")
	if relative == "" {
		relative = "false"
	}
	return strconv.ParseBool(relative)
}

// HTTPMove adds position routes for the mover to the route table.
func HTTPMove(iface Mover, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/pos"}] = GetPos(iface)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/pos"}] = SetPos(iface)
}

// GetPos returns an HTTP handler func from a mover that gets the position of the axis.
func GetPos(m Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, err := m.GetPos()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: pos}
		hp.EncodeAndRespond(w, r)
	}
}

// SetPos returns an HTTP handler func from a mover that triggers an absolute
// or relative move based on the relative query parameter.  Moves rejected by
// the axis' own limits come back as 400s.
func SetPos(m Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		relative, err := popRelative(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f := generichttp.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if relative {
			err = m.MoveRel(f.F64)
		} else {
			err = m.MoveAbs(f.F64)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPInitialize adds the initialization route to the route table.
func HTTPInitialize(i Initializer, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/initialize"}] = Initialize(i)
}

// Initialize returns an HTTP handler func that initializes the axis.
func Initialize(i Initializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := i.Initialize()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPDefineHome adds the home redefinition route to the route table.
func HTTPDefineHome(h HomeDefiner, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/home-define"}] = DefineHome(h)
}

// DefineHome returns an HTTP handler func that relabels the current position.
// The confirmation travels in the request body; an unconfirmed request is a 400.
func DefineHome(h HomeDefiner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := HomeT{}
		err := json.NewDecoder(r.Body).Decode(&body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = h.DefineHome(body.F64, body.Confirmed)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPHome adds the home search route to the route table.
func HTTPHome(h Homer, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/home-search"}] = Home(h)
}

// Home returns an HTTP handler func that starts the home search.
func Home(h Homer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.SearchHome()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPVelocity adds the velocity route to the route table.
func HTTPVelocity(s Speeder, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/velocity"}] = GetVelocity(s)
}

// GetVelocity returns an HTTP handler func which gets the velocity setpoint.
func GetVelocity(s Speeder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hp := generichttp.HumanPayload{T: types.Float64, Float: s.Velocity()}
		hp.EncodeAndRespond(w, r)
	}
}

// HTTPLimits adds the limits route to the route table.
func HTTPLimits(b Bounded, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/limits"}] = Limits(b)
}

// Limits returns an HTTP handler func that returns the travel limits.
func Limits(b Bounded) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(b.Bounds())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// HTTPMotor wraps one axis with an HTTP interface.
type HTTPMotor struct {
	Mover

	RouteTable generichttp.RouteTable
}

// NewHTTPMotor returns a new HTTP wrapper with the route table pre-configured.
// Capabilities beyond Mover are sniffed from the concrete type and their
// routes injected automatically.
func NewHTTPMotor(m Mover) HTTPMotor {
	w := HTTPMotor{Mover: m}
	rt := generichttp.RouteTable{}
	HTTPMove(m, rt)
	if initializer, ok := interface{}(m).(Initializer); ok {
		HTTPInitialize(initializer, rt)
	}
	if definer, ok := interface{}(m).(HomeDefiner); ok {
		HTTPDefineHome(definer, rt)
	}
	if homer, ok := interface{}(m).(Homer); ok {
		HTTPHome(homer, rt)
	}
	if speeder, ok := interface{}(m).(Speeder); ok {
		HTTPVelocity(speeder, rt)
	}
	if bounded, ok := interface{}(m).(Bounded); ok {
		HTTPLimits(bounded, rt)
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface.
func (h HTTPMotor) RT() generichttp.RouteTable {
	return h.RouteTable
}
