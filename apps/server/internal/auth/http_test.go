package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestMux(svc Service) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(svc).RegisterRoutes(mux)
	return mux
}

func doRequest(mux http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHandler_Flow(t *testing.T) {
	mux := newTestMux(NewManager(0))

	rec := doRequest(mux, http.MethodPost, "/api/auth/register", `{"username":"dana","password":"secret12"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d body=%s", rec.Code, rec.Body)
	}
	var reg sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if reg.SessionToken == "" || reg.PlayerID == 0 {
		t.Fatalf("register response = %+v", reg)
	}

	rec = doRequest(mux, http.MethodPost, "/api/auth/register", `{"username":"dana","password":"secret12"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodGet, "/api/auth/me", "", reg.SessionToken)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"dana"`) {
		t.Fatalf("me status = %d body=%s", rec.Code, rec.Body)
	}

	rec = doRequest(mux, http.MethodPost, "/api/auth/login", `{"username":"dana","password":"wrong-one"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodPost, "/api/auth/logout", "", reg.SessionToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	rec = doRequest(mux, http.MethodGet, "/api/auth/me", "", reg.SessionToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d", rec.Code)
	}
}

func TestHTTPHandler_RejectsBadInput(t *testing.T) {
	mux := newTestMux(NewManager(0))
	if rec := doRequest(mux, http.MethodGet, "/api/auth/register", "", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET register status = %d", rec.Code)
	}
	if rec := doRequest(mux, http.MethodPost, "/api/auth/register", `{"username":"x","extra":1}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d", rec.Code)
	}
	if rec := doRequest(mux, http.MethodPost, "/api/auth/register", `{"username":"x","password":"secret12"}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("short username status = %d", rec.Code)
	}
	if rec := doRequest(mux, http.MethodPost, "/api/auth/logout", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("logout without token status = %d", rec.Code)
	}
}

func TestAuthenticate_QueryToken(t *testing.T) {
	m := NewManager(0)
	s, token, err := m.Register("erin", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	got, ok := Authenticate(m, req)
	if !ok || got != s {
		t.Fatalf("Authenticate = %+v, %v", got, ok)
	}
	if _, ok := Authenticate(nil, req); ok {
		t.Fatalf("nil service authenticated")
	}
	if BearerToken("Basic abc") != "" {
		t.Fatalf("non-bearer header accepted")
	}
}
