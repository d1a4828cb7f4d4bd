package fungen

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/generichttp"
	"github.com/bode-lab/awgctl/util"
)

func setup() (*awg.Mock, *httptest.Server) {
	mock := awg.NewMock()
	httper := NewHTTPFunctionGenerator(mock)
	r := chi.NewRouter()
	httper.RT().Bind(r)
	return mock, httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", buf)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestSetFrequencyReachesGenerator(t *testing.T) {
	mock, srv := setup()
	defer srv.Close()
	resp := postJSON(t, srv.URL+"/frequency", ChannelFloat{Chan: 1, F64: 1234})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, expected 200", resp.StatusCode)
	}
	if mock.Channels[0].Frequency != 1234 {
		t.Errorf("ch1 frequency %v, expected 1234", mock.Channels[0].Frequency)
	}
	if mock.Channels[1].Frequency != 0 {
		t.Error("ch2 frequency modified by a ch1 command")
	}
}

func TestSetOutputBothChannels(t *testing.T) {
	mock, srv := setup()
	defer srv.Close()
	resp := postJSON(t, srv.URL+"/output", ChannelBool{Chan: 0, Bool: true})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, expected 200", resp.StatusCode)
	}
	if !mock.Channels[0].On || !mock.Channels[1].On {
		t.Error("outputs not enabled on both channels")
	}
}

func TestSetWaveTypeByName(t *testing.T) {
	mock, srv := setup()
	defer srv.Close()
	resp := postJSON(t, srv.URL+"/wave-type", ChannelString{Chan: 2, Str: "square"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, expected 200", resp.StatusCode)
	}
	if mock.Channels[1].Wave != awg.Square {
		t.Errorf("ch2 wave %v, expected square", mock.Channels[1].Wave)
	}
}

func TestBadWaveNameRejected(t *testing.T) {
	_, srv := setup()
	defer srv.Close()
	resp := postJSON(t, srv.URL+"/wave-type", ChannelString{Chan: 1, Str: "sawtooth"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, expected 400", resp.StatusCode)
	}
}

func TestUnknownChannelIsBadRequest(t *testing.T) {
	_, srv := setup()
	defer srv.Close()
	resp := postJSON(t, srv.URL+"/frequency", ChannelFloat{Chan: 7, F64: 100})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, expected 400", resp.StatusCode)
	}
}

func TestGetID(t *testing.T) {
	_, srv := setup()
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/id")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	s := generichttp.StrT{}
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Str != "MOCK AWG" {
		t.Errorf("id %q, expected the mock's", s.Str)
	}
}

func TestLimitMiddlewareClampsAmplitude(t *testing.T) {
	mock := awg.NewMock()
	httper := NewHTTPFunctionGenerator(mock)
	limiter := LimitMiddleware{Limits: util.Limiter{Min: -5, Max: 5}}
	limiter.Inject(httper)
	r := chi.NewRouter()
	r.Use(limiter.Check)
	httper.RT().Bind(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/amplitude", ChannelFloat{Chan: 1, F64: 20})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range amplitude passed with status %d", resp.StatusCode)
	}
	if mock.Channels[0].Amplitude != 0 {
		t.Error("out of range amplitude reached the generator")
	}

	resp2 := postJSON(t, srv.URL+"/amplitude", ChannelFloat{Chan: 1, F64: 2})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("in range amplitude rejected with status %d", resp2.StatusCode)
	}
	if mock.Channels[0].Amplitude != 2 {
		t.Errorf("ch1 amplitude %v, expected 2", mock.Channels[0].Amplitude)
	}
}

func TestEndpointsListsRoutes(t *testing.T) {
	httper := NewHTTPFunctionGenerator(awg.NewMock())
	eps := httper.RT().Endpoints()
	if len(eps) != 8 {
		t.Errorf("%d endpoints, expected 8", len(eps))
	}
}
