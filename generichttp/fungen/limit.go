package fungen

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/bode-lab/awgctl/generichttp"
	"github.com/bode-lab/awgctl/util"
)

var (
	errClamped = errors.New("requested voltage violates software limits, aborted")
)

// LimitMiddleware imposes software limits on the voltage a client may
// command, protecting the device under test from an overdriven input
type LimitMiddleware struct {
	// Limits contains the server imposed voltage limits
	Limits util.Limiter
}

// Check verifies if an amplitude or offset post would violate the limit,
// and if it does, responds with StatusBadRequest,
// otherwise flows control to the next handler
func (l *LimitMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.String()
		voltage := strings.Contains(url, "amplitude") || strings.Contains(url, "offset")
		if !voltage || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		// downstream functions want the body too...
		// read it all here, then "paste" it back with ioutil
		bodyContent, _ := ioutil.ReadAll(r.Body)
		defer r.Body.Close()
		r.Body = ioutil.NopCloser(bytes.NewBuffer(bodyContent))
		cf := ChannelFloat{}
		err := json.NewDecoder(bytes.NewReader(bodyContent)).Decode(&cf)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !l.Limits.Check(cf.F64) {
			http.Error(w, errClamped.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Inject places a /limits route on the table of the HTTPer
func (l LimitMiddleware) Inject(h generichttp.HTTPer) {
	h.RT()[generichttp.MethodPath{Method: http.MethodGet, Path: "/limits"}] = Limits(l)
}

// Limits returns an HTTP handler func that returns the voltage limits
func Limits(l LimitMiddleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(l.Limits)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
}
