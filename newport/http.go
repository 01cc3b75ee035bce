package newport

import (
	"encoding/json"
	"go/types"
	"net/http"
	"strconv"

	"github.com/omc-lab/polctl/generichttp"
)

// HTTPPolarizer wraps a Polarizer in an HTTP interface exposing the single
// logical set-angle operation.
type HTTPPolarizer struct {
	// P is the underlying two-axis composite
	P *Polarizer

	// RouteTable is the map of routes to handlers
	RouteTable generichttp.RouteTable
}

// NewHTTPPolarizer returns a new wrapper with the route table populated.
func NewHTTPPolarizer(p *Polarizer) HTTPPolarizer {
	w := HTTPPolarizer{P: p}
	rt := generichttp.RouteTable{}
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/angle"}] = w.GetAngle
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/angle"}] = w.SetAngle
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/initialize"}] = w.Initialize
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/cmd-list"}] = w.CmdList
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface.
func (h HTTPPolarizer) RT() generichttp.RouteTable {
	return h.RouteTable
}

// GetAngle returns the current polarization angle as json {'f64': value}.
func (h HTTPPolarizer) GetAngle(w http.ResponseWriter, r *http.Request) {
	angle, err := h.P.Angle()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := generichttp.HumanPayload{T: types.Float64, Float: angle}
	hp.EncodeAndRespond(w, r)
}

// SetAngle sets the polarization angle from json {'f64': value}.  The verbose
// query parameter narrates the motion to the server log.  Out-of-bounds
// targets are 400s; transport and controller failures are 500s.
func (h HTTPPolarizer) SetAngle(w http.ResponseWriter, r *http.Request) {
	verbose := false
	if v := r.URL.Query().Get("verbose"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		verbose = b
	}
	f := generichttp.FloatT{}
	err := json.NewDecoder(r.Body).Decode(&f)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.P.Set(f.F64, verbose)
	if err != nil {
		if _, ok := err.(ErrOutOfBounds); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Initialize initializes both axes.
func (h HTTPPolarizer) Initialize(w http.ResponseWriter, r *http.Request) {
	err := h.P.Initialize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CmdList returns the command set understood by the driver as JSON.
func (h HTTPPolarizer) CmdList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(Commands())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
