package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"appointment-booking-api/internal/auth"
	"appointment-booking-api/internal/httpapi"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
	"appointment-booking-api/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	r        *gin.Engine
	sched    *service.Scheduler
	accounts *service.Accounts
}

func setup(t *testing.T) *server {
	t.Helper()
	st := memory.New()
	sched := service.NewScheduler(st, nil)
	accounts := service.NewAccounts(st, auth.NewCredentials("test-secret", time.Hour))
	rl := middleware.NewRateLimiter(1000, 1000)
	t.Cleanup(rl.Close)
	r := httpapi.NewRouter(sched, accounts, httpapi.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Limiter:        rl,
	})
	return &server{r: r, sched: sched, accounts: accounts}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	return rec
}

func (s *server) token(t *testing.T, email string, role model.Role) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Test", "email": email, "password": "testpass123", "role": string(role),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup %s: %d %s", email, rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "testpass123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	var res service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return res.Token
}

func (s *server) add(t *testing.T, date, start, end string) string {
	t.Helper()
	d, _ := model.ParseDate(date)
	st, _ := model.ParseClock(start)
	en, _ := model.ParseClock(end)
	a, err := s.sched.Create(context.Background(), service.Slot{Date: d, Start: st, End: en})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return a.ID
}

func TestHealth(t *testing.T) {
	s := setup(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	s := setup(t)

	rec := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Ann", "email": "ann@test.com", "password": "testpass123",
	})
	if rec.Code != http.StatusOK || rec.Body.String() != "User registered successfully!" {
		t.Fatalf("signup: %d %q", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Ann", "email": "ann@test.com", "password": "testpass123",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@test.com", "password": "testpass123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Token string `json:"token"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Token == "" || res.Email != "ann@test.com" || res.Role != "USER" {
		t.Errorf("unexpected login body %+v", res)
	}

	wrong := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@test.com", "password": "nope"})
	unknown := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@test.com", "password": "nope"})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("login failures differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestSignupBadBody(t *testing.T) {
	s := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBookingEndpoints(t *testing.T) {
	s := setup(t)
	id := s.add(t, "2024-01-01", "10:00", "11:00")

	rec := s.do(t, http.MethodGet, "/appointments/available", "", nil)
	var avail []model.Appointment
	json.Unmarshal(rec.Body.Bytes(), &avail)
	if rec.Code != http.StatusOK || len(avail) != 1 {
		t.Fatalf("available: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/appointments/book", "", map[string]string{
		"appointmentId": id, "email": "walkin@test.com", "name": "Walk In",
	})
	if rec.Code != http.StatusOK || rec.Body.String() != "Appointment booked successfully!" {
		t.Fatalf("book: %d %q", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/appointments/book", "", map[string]string{
		"appointmentId": id, "email": "other@test.com",
	})
	if rec.Code != http.StatusBadRequest || rec.Body.String() != "appointment is already booked" {
		t.Errorf("double book: %d %q", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/appointments/book", "", map[string]string{
		"appointmentId": "missing", "email": "other@test.com",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("book missing: expected 404, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/appointments/user/walkin@test.com", "", nil)
	var mine []model.Appointment
	json.Unmarshal(rec.Body.Bytes(), &mine)
	if rec.Code != http.StatusOK || len(mine) != 1 || mine[0].User == nil {
		t.Errorf("user list: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/appointments/user/nobody@test.com", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/appointments/getappointment/"+id, "", nil)
	var got model.Appointment
	json.Unmarshal(rec.Body.Bytes(), &got)
	if rec.Code != http.StatusOK || !got.Scheduled || got.Date.String() != "2024-01-01" {
		t.Errorf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/appointments/getappointment/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	s := setup(t)
	user := s.token(t, "ann@test.com", model.RoleUser)
	admin := s.token(t, "root@test.com", model.RoleAdmin)
	id := s.add(t, "2024-01-01", "10:00", "11:00")

	rec := s.do(t, http.MethodPost, "/appointments/cancel/"+id, user, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cancel unbooked: expected 400, got %d", rec.Code)
	}

	s.do(t, http.MethodPost, "/appointments/book", "", map[string]string{"appointmentId": id, "email": "bob@test.com"})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusUnauthorized},
		{"admin", admin, http.StatusForbidden},
		{"user", user, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/appointments/cancel/"+id, tt.token, nil)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	got, _ := s.sched.Get(context.Background(), id)
	if got.Scheduled || got.User != nil {
		t.Errorf("expected slot released, got %+v", got)
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := setup(t)
	admin := s.token(t, "root@test.com", model.RoleAdmin)
	user := s.token(t, "ann@test.com", model.RoleUser)

	add := func(date, start, end string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/appointments/admin/add", admin, map[string]string{
			"date": date, "startTime": start, "endTime": end,
		})
	}

	if rec := add("2024-01-01", "10:00:00", "11:00:00"); rec.Code != http.StatusOK {
		t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"overlap", "10:30", "11:30", http.StatusConflict},
		{"touching", "11:00", "12:00", http.StatusConflict},
		{"end equals start", "13:00", "13:00", http.StatusBadRequest},
		{"malformed", "1pm", "14:00", http.StatusBadRequest},
		{"free", "12:00", "12:30", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := add("2024-01-01", tt.start, tt.end); rec.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := s.do(t, http.MethodPost, "/appointments/admin/add", admin, map[string]string{"date": "2024-01-02"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing times: expected 400, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/appointments/admin/all", admin, nil)
	var all []model.AppointmentSummary
	json.Unmarshal(rec.Body.Bytes(), &all)
	if rec.Code != http.StatusOK || len(all) != 2 {
		t.Fatalf("all: %d %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodGet, "/appointments/admin/all", user, nil); rec.Code != http.StatusForbidden {
		t.Errorf("all as user: expected 403, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/appointments/admin/all", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("all without token: expected 401, got %d", rec.Code)
	}

	id := all[0].ID
	rec = s.do(t, http.MethodPut, "/appointments/admin/update/"+id, admin, map[string]string{
		"date": "2024-01-01", "startTime": "12:00", "endTime": "12:15",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("update onto occupied range: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPut, "/appointments/admin/update/missing", admin, map[string]string{
		"date": "2024-01-01", "startTime": "15:00", "endTime": "16:00",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing: expected 404, got %d", rec.Code)
	}

	s.do(t, http.MethodPost, "/appointments/book", "", map[string]string{"appointmentId": id, "email": "bob@test.com"})
	rec = s.do(t, http.MethodPut, "/appointments/admin/update/"+id, admin, map[string]string{
		"date": "2024-01-03", "startTime": "09:00", "endTime": "10:00",
	})
	if rec.Code != http.StatusBadRequest || rec.Body.String() != "cannot edit a booked appointment" {
		t.Errorf("update booked: %d %q", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodDelete, "/appointments/admin/delete/"+id, admin, nil); rec.Code != http.StatusOK {
		t.Errorf("delete booked: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodDelete, "/appointments/admin/delete/"+id, admin, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete again: expected 404, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := setup(t)
	req := httptest.NewRequest(http.MethodOptions, "/appointments/available", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestLoginRateLimited(t *testing.T) {
	st := memory.New()
	accounts := service.NewAccounts(st, auth.NewCredentials("test-secret", time.Hour))
	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Close()
	r := httpapi.NewRouter(service.NewScheduler(st, nil), accounts, httpapi.Options{Limiter: rl})

	last := 0
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"a@b.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 on third attempt, got %d", last)
	}
}

func TestLoginRateLimitIgnoresSpoofedForwarding(t *testing.T) {
	st := memory.New()
	accounts := service.NewAccounts(st, auth.NewCredentials("test-secret", time.Hour))

	login := func(r *gin.Engine, remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"a@b.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Close()
	r := httpapi.NewRouter(service.NewScheduler(st, nil), accounts, httpapi.Options{Limiter: rl})

	throttled := 0
	for i := 0; i < 10; i++ {
		if login(r, "203.0.113.7:4000", fmt.Sprintf("198.51.100.%d", i+1)) == http.StatusTooManyRequests {
			throttled++
		}
	}
	if throttled != 8 {
		t.Errorf("expected 8 of 10 throttled from one peer, got %d", throttled)
	}

	// a configured proxy may still forward distinct clients
	proxied := middleware.NewRateLimiter(0.001, 2)
	defer proxied.Close()
	r = httpapi.NewRouter(service.NewScheduler(st, nil), accounts, httpapi.Options{
		Limiter:        proxied,
		TrustedProxies: []string{"127.0.0.1"},
	})
	for i := 0; i < 10; i++ {
		if code := login(r, "127.0.0.1:4000", fmt.Sprintf("198.51.100.%d", i+1)); code != http.StatusUnauthorized {
			t.Fatalf("client %d behind proxy: expected 401, got %d", i, code)
		}
	}
}
