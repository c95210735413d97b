package api

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestTimeoutMiddleware_PassesThroughFastRequests(t *testing.T) {
	h := TimeoutMiddleware(100 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/emergencies", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusCreated)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestTimeoutMiddleware_SlowRequestGets408(t *testing.T) {
	handlerDone := make(chan struct{})
	h := TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(10 * time.Millisecond)
		if _, err := w.Write([]byte("late body")); err != http.ErrHandlerTimeout {
			t.Errorf("expected ErrHandlerTimeout for a write after the deadline, got %v", err)
		}
		close(handlerDone)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/emergencies", nil))
	<-handlerDone

	if rr.Code != http.StatusRequestTimeout {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusRequestTimeout)
	}
	if strings.Contains(rr.Body.String(), "late body") {
		t.Errorf("late handler write reached the response: %v", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Request timeout") {
		t.Errorf("expected the timeout body, got: %v", rr.Body.String())
	}
}

func TestTimeoutMiddleware_TimedOutRequestsDoNotLeakGoroutines(t *testing.T) {
	h := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("late"))
	}))

	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/emergencies", nil))
		if rr.Code != http.StatusRequestTimeout {
			t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusRequestTimeout)
		}
	}

	// Give the slow handlers time to finish and exit.
	time.Sleep(200 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Errorf("handler goroutines still running: %d before, %d after", before, after)
	}
}
