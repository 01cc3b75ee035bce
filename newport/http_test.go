package newport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/omc-lab/polctl/generichttp"
	"github.com/omc-lab/polctl/util"
)

func newSimPair(t *testing.T) (*SimMotor, *SimMotor) {
	t.Helper()
	mk := func(name string) *SimMotor {
		s, err := NewSimMotor(AxisConfig{
			Name:     name,
			Axis:     1,
			Bounds:   util.Limiter{Min: -180, Max: 180},
			Velocity: 4,
		})
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	return mk("linear polarizer"), mk("quarter wave plate")
}

func newPolarizerServer(t *testing.T) (*SimMotor, *SimMotor, *httptest.Server) {
	t.Helper()
	lp, qwp := newSimPair(t)
	httper := NewHTTPPolarizer(NewPolarizer(lp, qwp))
	r := chi.NewRouter()
	httper.RT().Bind(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return lp, qwp, srv
}

func TestHTTPSetAngleDrivesBothAxes(t *testing.T) {
	lp, qwp, srv := newPolarizerServer(t)
	resp, err := http.Post(srv.URL+"/angle", "application/json", strings.NewReader(`{"f64": 30}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	lpPos, _ := lp.GetPos()
	qwpPos, _ := qwp.GetPos()
	if lpPos != 30 {
		t.Errorf("expected linear polarizer at 30, got %g", lpPos)
	}
	if qwpPos != 30+QuarterWaveOffset {
		t.Errorf("expected quarter-wave plate at %g, got %g", 30+QuarterWaveOffset, qwpPos)
	}
}

func TestHTTPSetAngleOutOfBoundsIs400(t *testing.T) {
	lp, _, srv := newPolarizerServer(t)
	resp, err := http.Post(srv.URL+"/angle", "application/json", strings.NewReader(`{"f64": 500}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for an out-of-bounds angle, got %d", resp.StatusCode)
	}
	pos, _ := lp.GetPos()
	if pos != 0 {
		t.Errorf("expected the linear polarizer untouched, got %g", pos)
	}
}

func TestHTTPGetAngle(t *testing.T) {
	lp, _, srv := newPolarizerServer(t)
	lp.Move(12, true, false)
	resp, err := http.Get(srv.URL + "/angle")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	f := generichttp.FloatT{}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 12 {
		t.Errorf("expected angle 12, got %g", f.F64)
	}
}

func TestHTTPCmdListIncludesWholeCommandSet(t *testing.T) {
	_, _, srv := newPolarizerServer(t)
	resp, err := http.Get(srv.URL + "/cmd-list")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var cmds []Command
	if err := json.NewDecoder(resp.Body).Decode(&cmds); err != nil {
		t.Fatal(err)
	}
	if len(cmds) != len(Commands()) {
		t.Errorf("expected %d commands, got %d", len(Commands()), len(cmds))
	}
}

func TestHTTPSetAngleBadVerboseIs400(t *testing.T) {
	_, _, srv := newPolarizerServer(t)
	resp, err := http.Post(srv.URL+"/angle?verbose=banana", "application/json",
		strings.NewReader(`{"f64": 10}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed verbose flag, got %d", resp.StatusCode)
	}
}
