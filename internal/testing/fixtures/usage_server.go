package fixtures

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// UsageWindow is one window of a usage endpoint payload
type UsageWindow struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    *string `json:"resets_at"`
}

// UsagePayload is the body served by the usage endpoint. Nil windows are
// sent as null.
type UsagePayload struct {
	FiveHour *UsageWindow `json:"five_hour"`
	SevenDay *UsageWindow `json:"seven_day"`
}

// Window builds a window resetting at resetsAt; a zero time serialises as null
func Window(utilization float64, resetsAt time.Time) *UsageWindow {
	w := &UsageWindow{Utilization: utilization}
	if !resetsAt.IsZero() {
		s := resetsAt.Format(time.RFC3339)
		w.ResetsAt = &s
	}
	return w
}

// Response is one scripted reply
type Response struct {
	Status  int
	Payload *UsagePayload
	// Raw, when set, is written instead of Payload
	Raw string
}

// Request is what the server saw for one call
type Request struct {
	Path      string
	Cookie    string
	UserAgent string
}

// UsageServer serves scripted usage replies under /api/organizations/{org}/usage.
// The last response repeats once the script is exhausted.
type UsageServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses []Response
	requests  []Request
}

// NewUsageServer starts a server replying with responses in order
func NewUsageServer(responses ...Response) *UsageServer {
	s := &UsageServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// BaseURL is the api base to configure clients with
func (s *UsageServer) BaseURL() string {
	return s.URL + "/api"
}

// Requests returns the requests received so far
func (s *UsageServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Push appends responses to the script
func (s *UsageServer) Push(responses ...Response) {
	s.mu.Lock()
	s.responses = append(s.responses, responses...)
	s.mu.Unlock()
}

func (s *UsageServer) next() Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return Response{Status: http.StatusNotFound, Raw: `{"error":"no scripted response"}`}
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp
}

func (s *UsageServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      r.URL.Path,
		Cookie:    r.Header.Get("Cookie"),
		UserAgent: r.Header.Get("User-Agent"),
	})
	s.mu.Unlock()

	resp := s.next()
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	body := []byte(resp.Raw)
	if resp.Raw == "" && resp.Payload != nil {
		var err error
		if body, err = sonic.Marshal(resp.Payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
