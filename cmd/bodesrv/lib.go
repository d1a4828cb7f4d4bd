package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-yaml/yaml"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/feeltech"
	"github.com/bode-lab/awgctl/generichttp"
	"github.com/bode-lab/awgctl/generichttp/fungen"
	"github.com/bode-lab/awgctl/server/middleware/locker"
	"github.com/bode-lab/awgctl/util"
)

// ObjSetup holds the typical triplet of args for a New<device> call
type ObjSetup struct {
	// Addr holds the filesystem address of the device,
	// e.g. /dev/ttyUSB0 for an RS232 device on a serial cable
	Addr string `yaml:"Addr" koanf:"Addr"`

	// Endpoint is the URL stem the routes from this device will be
	// served on, ex. Endpoint="/bench/awg" produces routes of
	// /bench/awg/frequency, etc.
	Endpoint string `yaml:"Endpoint" koanf:"Endpoint"`

	// Type is the "type" of the object, e.g. fy6600
	Type string `yaml:"Type" koanf:"Type"`

	// SettleSecs overrides the driver's inter-command settle time
	// when nonzero
	SettleSecs float64 `yaml:"SettleSecs" koanf:"SettleSecs"`

	// Limits imposes software voltage limits on amplitude and offset
	// commands when non-nil
	Limits *util.Limiter `yaml:"Limits" koanf:"Limits"`
}

// Config is a struct that holds the initialization parameters for the
// server.  It is to be populated by a yaml/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr" koanf:"Addr"`

	// Mock replaces every device with an in-memory mock
	Mock bool `yaml:"Mock" koanf:"Mock"`

	// Nodes is the list of devices to set up
	Nodes []ObjSetup `yaml:"Nodes" koanf:"Nodes"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// BuildMux constructs a chi router with a submux per configured node.
// The root serves a special route, /endpoints, which returns the graph
// of all bound routes as JSON.
func BuildMux(c Config) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	for _, node := range c.Nodes {
		var gen awg.Generator
		typ := strings.ToLower(node.Type)
		switch typ {
		case "fy6600", "feeltech":
			if c.Mock {
				gen = awg.NewMock()
			} else {
				fy := feeltech.NewFY6600(node.Addr)
				if node.SettleSecs > 0 {
					fy.Settle = util.SecsToDuration(node.SettleSecs)
				}
				gen = fy
			}
		case "mock":
			gen = awg.NewMock()
		default:
			log.Fatal("type ", typ, " not understood")
		}

		err := gen.Initialize()
		if err != nil {
			log.Fatalf("unable to initialize %s at %s: %v", typ, node.Addr, err)
		}

		httper := fungen.NewHTTPFunctionGenerator(gen)

		var mw []func(http.Handler) http.Handler
		if node.Limits != nil {
			limiter := fungen.LimitMiddleware{Limits: *node.Limits}
			limiter.Inject(httper)
			mw = append(mw, limiter.Check)
		}

		// add a lock interface for this node
		lock := locker.New()
		locker.Inject(httper, lock)

		// prepare the URL, "bench/awg" => "/bench/awg"
		hndlS := generichttp.SubMuxSanitize(node.Endpoint)
		supergraph[hndlS] = httper.RT().Endpoints()

		r := chi.NewRouter()
		r.Use(mw...)
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}
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
