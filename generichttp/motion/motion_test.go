package motion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/omc-lab/polctl/generichttp"
	"github.com/omc-lab/polctl/newport"
	"github.com/omc-lab/polctl/util"
)

func newTestAxis(t *testing.T) *newport.SimMotor {
	t.Helper()
	ax, err := newport.NewSimMotor(newport.AxisConfig{
		Name:     "test axis",
		Axis:     1,
		Bounds:   util.Limiter{Min: -180, Max: 180},
		Velocity: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ax
}

func newTestServer(t *testing.T) (*newport.SimMotor, *httptest.Server) {
	t.Helper()
	ax := newTestAxis(t)
	httper := NewHTTPMotor(ax)
	r := chi.NewRouter()
	httper.RT().Bind(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return ax, srv
}

func TestHTTPMotorSniffsAllCapabilities(t *testing.T) {
	ax := newTestAxis(t)
	httper := NewHTTPMotor(ax)
	eps := httper.RT().Endpoints()
	want := []string{
		"GET /limits",
		"GET /pos",
		"GET /velocity",
		"POST /home-define",
		"POST /home-search",
		"POST /initialize",
		"POST /pos",
	}
	if len(eps) != len(want) {
		t.Fatalf("expected endpoints %v, got %v", want, eps)
	}
	for i := range want {
		if eps[i] != want[i] {
			t.Errorf("endpoint %d: expected %q, got %q", i, want[i], eps[i])
		}
	}
}

func TestSetPosThenGetPos(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/pos", "application/json", strings.NewReader(`{"f64": 25}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on move, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/pos")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	f := generichttp.FloatT{}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 25 {
		t.Errorf("expected position 25, got %g", f.F64)
	}
}

func TestSetPosRelativeAccumulates(t *testing.T) {
	ax, srv := newTestServer(t)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/pos?relative=true", "application/json",
			strings.NewReader(`{"f64": 10}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on relative move, got %d", resp.StatusCode)
		}
	}
	pos, _ := ax.GetPos()
	if pos != 20 {
		t.Errorf("expected position 20 after two relative moves, got %g", pos)
	}
}

func TestSetPosOutOfBoundsIs400(t *testing.T) {
	ax, srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/pos", "application/json", strings.NewReader(`{"f64": 200}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for an out-of-bounds move, got %d", resp.StatusCode)
	}
	pos, _ := ax.GetPos()
	if pos != 0 {
		t.Errorf("expected position unchanged, got %g", pos)
	}
}

func TestDefineHomeRequiresConfirmation(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/home-define", "application/json",
		strings.NewReader(`{"f64": 0, "confirmed": false}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for an unconfirmed home redefinition, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/home-define", "application/json",
		strings.NewReader(`{"f64": 0, "confirmed": true}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for a confirmed home redefinition, got %d", resp.StatusCode)
	}
}

func TestHomeSearchReturnsAxisHome(t *testing.T) {
	ax, srv := newTestServer(t)
	if err := ax.Move(25, true, false); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+"/home-search", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on home search, got %d", resp.StatusCode)
	}
	pos, _ := ax.GetPos()
	if pos != 0 {
		t.Errorf("expected the axis home after the search, got %g", pos)
	}
}

func TestInitializeAndVelocityAndLimits(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/initialize", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on initialize, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/velocity")
	if err != nil {
		t.Fatal(err)
	}
	f := generichttp.FloatT{}
	err = json.NewDecoder(resp.Body).Decode(&f)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if f.F64 != 4 {
		t.Errorf("expected velocity 4, got %g", f.F64)
	}

	resp, err = http.Get(srv.URL + "/limits")
	if err != nil {
		t.Fatal(err)
	}
	lim := util.Limiter{}
	err = json.NewDecoder(resp.Body).Decode(&lim)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if lim.Min != -180 || lim.Max != 180 {
		t.Errorf("expected limits [-180, 180], got [%g, %g]", lim.Min, lim.Max)
	}
}
