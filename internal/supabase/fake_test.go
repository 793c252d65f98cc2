package supabase

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeProject emulates the parts of GoTrue and PostgREST the package uses.
type fakeProject struct {
	t *testing.T

	mu       sync.Mutex
	stakes   map[string]map[string]any // by user_id
	users    map[string]map[string]any // by id
	accounts map[string]string         // email -> password
	metadata map[string]map[string]string
	calls    map[string]int            // "METHOD path" -> count
	bearers  []string
	failNext map[string]int // "METHOD path" -> number of 503s to serve first
}

func newFakeProject(t *testing.T) (*fakeProject, *httptest.Server) {
	f := &fakeProject{
		t:        t,
		stakes:   map[string]map[string]any{},
		users:    map[string]map[string]any{},
		accounts: map[string]string{},
		metadata: map[string]map[string]string{},
		calls:    map[string]int{},
		failNext: map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeProject) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeProject) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.calls[key]++
	f.bearers = append(f.bearers, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

	if r.Header.Get("apikey") != "anon-key" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "No API key found in request"})
		return
	}
	if n := f.failNext[key]; n > 0 {
		f.failNext[key] = n - 1
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "upstream unavailable"})
		return
	}

	body, _ := io.ReadAll(r.Body)
	switch {
	case strings.HasPrefix(r.URL.Path, "/auth/v1/"):
		f.serveAuth(w, r, body)
	case r.URL.Path == stakesPath:
		f.serveTable(w, r, body, f.stakes, "user_id")
	case r.URL.Path == usersPath:
		f.serveTable(w, r, body, f.users, "id")
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route"})
	}
}

func (f *fakeProject) serveAuth(w http.ResponseWriter, r *http.Request, body []byte) {
	var req struct {
		Email        string            `json:"email"`
		Password     string            `json:"password"`
		RefreshToken string            `json:"refresh_token"`
		Data         map[string]string `json:"data"`
	}
	_ = json.Unmarshal(body, &req)

	user := func(email string) map[string]any {
		return map[string]any{
			"id":            uuid.NewSHA1(uuid.NameSpaceURL, []byte(email)).String(),
			"email":         email,
			"user_metadata": f.metadata[email],
		}
	}
	session := func(email string) map[string]any {
		return map[string]any{
			"access_token":  "access-" + email,
			"refresh_token": "refresh-" + email,
			"expires_in":    3600,
			"expires_at":    time.Now().Add(time.Hour).Unix(),
			"user":          user(email),
		}
	}

	switch r.URL.Path {
	case "/auth/v1/signup":
		if _, ok := f.accounts[req.Email]; ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"})
			return
		}
		f.accounts[req.Email] = req.Password
		f.metadata[req.Email] = req.Data
		if strings.HasSuffix(req.Email, "@confirm.test") {
			writeJSON(w, http.StatusOK, user(req.Email))
			return
		}
		writeJSON(w, http.StatusOK, session(req.Email))
	case "/auth/v1/token":
		switch r.URL.Query().Get("grant_type") {
		case "password":
			if pw, ok := f.accounts[req.Email]; !ok || pw != req.Password {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"})
				return
			}
			writeJSON(w, http.StatusOK, session(req.Email))
		case "refresh_token":
			email, ok := strings.CutPrefix(req.RefreshToken, "refresh-")
			if !ok {
				writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "error_code": "refresh_token_not_found", "msg": "Invalid Refresh Token"})
				return
			}
			writeJSON(w, http.StatusOK, session(email))
		}
	case "/auth/v1/logout":
		w.WriteHeader(http.StatusNoContent)
	case "/auth/v1/health":
		writeJSON(w, http.StatusOK, map[string]any{"name": "GoTrue", "version": "test"})
	}
}

func (f *fakeProject) serveTable(w http.ResponseWriter, r *http.Request, body []byte, table map[string]map[string]any, keyCol string) {
	q := r.URL.Query()
	match := func(row map[string]any) bool {
		for col, vals := range q {
			if col == "select" || col == "order" || col == "on_conflict" {
				continue
			}
			v := vals[0]
			switch {
			case strings.HasPrefix(v, "eq."):
				if row[col] != strings.TrimPrefix(v, "eq.") {
					return false
				}
			case strings.HasPrefix(v, "in.("):
				set := strings.Split(strings.TrimSuffix(strings.TrimPrefix(v, "in.("), ")"), ",")
				found := false
				for _, s := range set {
					if row[col] == s {
						found = true
					}
				}
				if !found {
					return false
				}
			}
		}
		return true
	}

	switch r.Method {
	case http.MethodGet:
		out := []map[string]any{}
		for _, row := range table {
			if match(row) {
				out = append(out, row)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		prefer := r.Header.Get("Prefer")
		out := []map[string]any{}
		for _, row := range rows {
			k, _ := row[keyCol].(string)
			existing, exists := table[k]
			switch {
			case exists && strings.Contains(prefer, "merge-duplicates"):
				for col, v := range row {
					existing[col] = v
				}
				out = append(out, existing)
			case exists && strings.Contains(prefer, "ignore-duplicates"):
			case exists:
				writeJSON(w, http.StatusConflict, map[string]any{
					"code":    "23505",
					"message": `duplicate key value violates unique constraint "sherk_stakes_user_id_key"`,
				})
				return
			default:
				row["id"] = orDefault(row["id"], uuid.NewString())
				row["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
				if _, ok := row["updated_at"]; !ok {
					row["updated_at"] = row["created_at"]
				}
				table[k] = row
				out = append(out, row)
			}
		}
		if strings.Contains(prefer, "return=minimal") {
			w.WriteHeader(http.StatusCreated)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	case http.MethodPatch:
		var fields map[string]any
		_ = json.Unmarshal(body, &fields)
		out := []map[string]any{}
		for _, row := range table {
			if match(row) {
				for col, v := range fields {
					row[col] = v
				}
				out = append(out, row)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodDelete:
		for k, row := range table {
			if match(row) {
				delete(table, k)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func orDefault(v any, def string) any {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
