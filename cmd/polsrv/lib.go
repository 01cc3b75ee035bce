package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/omc-lab/polctl/comm"
	"github.com/omc-lab/polctl/generichttp"
	"github.com/omc-lab/polctl/generichttp/ascii"
	"github.com/omc-lab/polctl/generichttp/motion"
	"github.com/omc-lab/polctl/newport"
	"github.com/omc-lab/polctl/server/middleware/locker"
	"github.com/omc-lab/polctl/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Minmax holds a min and max value.
type Minmax struct {
	Min float64 `yaml:"Min"`
	Max float64 `yaml:"Max"`
}

// AxisSetup holds the constructor arguments for one axis.
type AxisSetup struct {
	// Addr holds the network or filesystem address of the controller,
	// e.g. 192.168.100.123:2006 for a device connected to port 6
	// on a digi portserver, or /dev/ttyS4 for an RS232 device on a serial cable
	Addr string `yaml:"Addr"`

	// Serial determines if the connection is serial/RS232 (true) or TCP (false)
	Serial bool `yaml:"Serial"`

	// Name is the human name of the axis, used in logs and error messages
	Name string `yaml:"Name"`

	// Axis is the controller axis number
	Axis int `yaml:"Axis"`

	// Velocity is the speed configured at initialization, degrees/sec
	Velocity float64 `yaml:"Velocity"`

	// Limits is the inclusive range of reachable positions in degrees
	Limits Minmax `yaml:"Limits"`

	// Endpoint is the URL stem the axis routes are served under
	Endpoint string `yaml:"Endpoint"`
}

// Config holds the initialization parameters for the server.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// Mock runs against simulated axes instead of real hardware
	Mock bool `yaml:"Mock"`

	// LinearPolarizer is the linear polarizer axis
	LinearPolarizer AxisSetup `yaml:"LinearPolarizer"`

	// QuarterWave is the quarter-wave plate axis
	QuarterWave AxisSetup `yaml:"QuarterWave"`

	// PolarizerEndpoint is the URL stem of the composite set-angle routes
	PolarizerEndpoint string `yaml:"PolarizerEndpoint"`
}

func axisConfig(s AxisSetup) newport.AxisConfig {
	return newport.AxisConfig{
		Name:     s.Name,
		Axis:     s.Axis,
		Bounds:   util.Limiter{Min: s.Limits.Min, Max: s.Limits.Max},
		Velocity: s.Velocity,
	}
}

// buildAxis makes a real or simulated axis from its setup.  Real axes get
// their own connection to the instrument.
func buildAxis(s AxisSetup, mock bool) (newport.Axis, error) {
	if mock {
		return newport.NewSimMotor(axisConfig(s))
	}
	var serCfg = newport.MakeSerConf(s.Addr)
	rd := comm.NewRemoteDevice(s.Addr, s.Serial, nil, serCfg)
	if err := rd.Open(); err != nil {
		return nil, err
	}
	return newport.NewMotor(axisConfig(s), &rd)
}

// mountAxis wraps an axis in its HTTP interface and mounts it on the router.
func mountAxis(root chi.Router, ax newport.Axis, endpoint string, graph map[string][]string) {
	httper := motion.NewHTTPMotor(ax)
	if raw, ok := ax.(ascii.RawCommunicator); ok {
		ascii.InjectRawComm(httper.RT(), raw)
	}
	lock := locker.New()
	locker.Inject(httper, lock)

	r := chi.NewRouter()
	r.Use(lock.Check)
	httper.RT().Bind(r)

	stem := generichttp.SubMuxSanitize(endpoint)
	graph[stem] = httper.RT().Endpoints()
	root.Mount(stem, r)
}

// BuildMux constructs the two axes and the polarizer composite from the
// config and returns a router with all routes populated.
func BuildMux(c Config) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	lp, err := buildAxis(c.LinearPolarizer, c.Mock)
	if err != nil {
		log.Fatal("linear polarizer setup failed: ", err)
	}
	qwp, err := buildAxis(c.QuarterWave, c.Mock)
	if err != nil {
		log.Fatal("quarter-wave plate setup failed: ", err)
	}

	if err := lp.Initialize(); err != nil {
		log.Printf("linear polarizer initialization failed, continuing: %v", err)
	}
	if err := qwp.Initialize(); err != nil {
		log.Printf("quarter-wave plate initialization failed, continuing: %v", err)
	}

	mountAxis(root, lp, c.LinearPolarizer.Endpoint, supergraph)
	mountAxis(root, qwp, c.QuarterWave.Endpoint, supergraph)

	pol := newport.NewPolarizer(lp, qwp)
	polHTTP := newport.NewHTTPPolarizer(pol)
	lock := locker.New()
	locker.Inject(polHTTP, lock)
	r := chi.NewRouter()
	r.Use(lock.Check)
	polHTTP.RT().Bind(r)
	stem := generichttp.SubMuxSanitize(c.PolarizerEndpoint)
	supergraph[stem] = polHTTP.RT().Endpoints()
	root.Mount(stem, r)

	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
