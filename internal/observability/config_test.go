package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountDisabledRegistersNothing(t *testing.T) {
	mux := http.NewServeMux()
	if (Config{}).Mount(mux) {
		t.Fatalf("expected disabled config to skip mounting")
	}
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without pprof, got %d", resp.Code)
	}
}

func TestMountServesIndex(t *testing.T) {
	mux := http.NewServeMux()
	if !(Config{EnablePprof: true}).Mount(mux) {
		t.Fatalf("expected pprof to mount")
	}
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", resp.Code)
	}
}
