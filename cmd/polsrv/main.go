package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "polsrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr: ":8000",
		LinearPolarizer: AxisSetup{
			Name:     "linear polarizer",
			Axis:     1,
			Velocity: 20,
			Limits:   Minmax{Min: -410, Max: 410},
			Endpoint: "/pol/lp",
		},
		QuarterWave: AxisSetup{
			Name:     "quarter wave plate",
			Axis:     1,
			Velocity: 20,
			Limits:   Minmax{Min: -410, Max: 410},
			Endpoint: "/pol/qwp",
		},
		PolarizerEndpoint: "/pol"}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `polsrv drives the polarization optics rig (linear polarizer and
quarter-wave plate on a Newport ESP motion controller) and exposes an HTTP
interface to it.  This enables a server-client architecture, and the clients
can leverage the excellent HTTP libraries for any programming language.

Usage:
	polsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `polsrv is amenable to configuration via its .yaml file.  For a primer on YAML,
see https://yaml.org/start.html

Each axis is configured with the address of its controller (TCP host:port, or
a serial device path with Serial: true), the controller axis number, the
inclusive degree limits, and the velocity programmed at initialization.

With Mock: true the server runs against simulated axes and never touches
hardware; positions start at zero and moves update them instantly.

The quarter-wave plate is slaved to the linear polarizer: POSTing an angle to
the polarizer endpoint moves the linear polarizer, reads back the achieved
position, and moves the quarter-wave plate to that plus 45 degrees.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("polsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux := BuildMux(c)
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
