package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-be/internal/api"
	"github.com/taskdeck/taskdeck-be/internal/auth"
	"github.com/taskdeck/taskdeck-be/internal/services"
	"github.com/taskdeck/taskdeck-be/internal/store"
)

func newTestRouter() http.Handler {
	sessions := auth.NewSessionStore(time.Hour)
	userService := services.NewUserService(store.NewMemoryUserStore())
	taskService := services.NewTaskService(store.NewMemoryTaskStore())
	return api.NewRouter(sessions, userService, taskService, "http://localhost:3000")
}

// do sends a JSON request through the router, attaching the session cookie
// when one is given, and decodes the envelope into a generic map.
func do(t *testing.T, router http.Handler, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reader).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	envelope := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func login(t *testing.T, router http.Handler, username, password string) *http.Cookie {
	t.Helper()
	rec, _ := do(t, router, "POST", "/api/login", map[string]string{
		"username": username, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func register(t *testing.T, router http.Handler, username, email, password string) {
	t.Helper()
	rec, _ := do(t, router, "POST", "/api/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	rec, _ := do(t, router, "GET", "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name        string
		body        map[string]string
		wantStatus  int
		wantMessage string
	}{
		{
			"valid",
			map[string]string{"username": "alice", "email": "alice@x.com", "password": "secret1"},
			http.StatusCreated,
			"Registration successful!",
		},
		{
			"username taken",
			map[string]string{"username": "alice", "email": "other@x.com", "password": "secret2"},
			http.StatusConflict,
			"Username already taken.",
		},
		{
			"email taken",
			map[string]string{"username": "alice2", "email": "alice@x.com", "password": "secret2"},
			http.StatusConflict,
			"Email already registered.",
		},
		{
			"short password",
			map[string]string{"username": "bob", "email": "bob@x.com", "password": "short"},
			http.StatusBadRequest,
			"Password must be at least 6 characters.",
		},
		{
			"missing fields",
			map[string]string{"username": "", "email": "", "password": ""},
			http.StatusBadRequest,
			"All fields are required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := do(t, router, "POST", "/api/register", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, envelope["message"])
			assert.Equal(t, tt.wantStatus == http.StatusCreated, envelope["success"])
		})
	}

	// The short-password attempt must not have created an account.
	rec, _ := do(t, router, "POST", "/api/login", map[string]string{
		"username": "bob", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")

	rec, envelope := do(t, router, "POST", "/api/login", map[string]string{
		"username": "alice", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "Welcome back, alice!", envelope["message"])

	user, ok := envelope["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), user["id"])
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	// Wrong password and unknown user share one generic message.
	_, wrongPass := do(t, router, "POST", "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	_, unknown := do(t, router, "POST", "/api/login", map[string]string{
		"username": "nobody", "password": "whatever",
	}, nil)
	assert.Equal(t, "Invalid username or password.", wrongPass["message"])
	assert.Equal(t, "Invalid username or password.", unknown["message"])
}

func TestMeAndLogout(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")
	cookie := login(t, router, "alice", "secret1")

	rec, envelope := do(t, router, "GET", "/api/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	user := envelope["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	rec, envelope = do(t, router, "POST", "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully.", envelope["message"])

	// The session is gone server-side, not just on the client.
	rec, _ = do(t, router, "GET", "/api/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out twice is still a success.
	rec, _ = do(t, router, "POST", "/api/logout", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTasksRequireSession(t *testing.T) {
	router := newTestRouter()

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/tasks"},
		{"POST", "/api/tasks"},
		{"PUT", "/api/tasks/1"},
		{"DELETE", "/api/tasks/1"},
		{"PUT", "/api/tasks/1/toggle"},
		{"GET", "/api/me"},
	} {
		rec, envelope := do(t, router, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Not logged in.", envelope["message"])
	}
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")
	cookie := login(t, router, "alice", "secret1")

	// Create.
	rec, envelope := do(t, router, "POST", "/api/tasks", map[string]string{
		"title": "Buy milk", "content": "two litres",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Task created!", envelope["message"])
	task := envelope["task"].(map[string]any)
	assert.Equal(t, "Buy milk", task["title"])
	assert.Equal(t, false, task["done"])
	assert.Equal(t, float64(1), task["id"])

	// Empty title is rejected.
	rec, envelope = do(t, router, "POST", "/api/tasks", map[string]string{"title": "   "}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Task title cannot be empty.", envelope["message"])

	// Update round-trips through the list.
	rec, envelope = do(t, router, "PUT", "/api/tasks/1", map[string]string{
		"title": "Buy milk and bread", "content": "",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task updated!", envelope["message"])

	rec, envelope = do(t, router, "GET", "/api/tasks", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := envelope["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk and bread", tasks[0].(map[string]any)["title"])

	// Toggle twice.
	rec, envelope = do(t, router, "PUT", "/api/tasks/1/toggle", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task marked as done.", envelope["message"])
	assert.Equal(t, true, envelope["task"].(map[string]any)["done"])

	rec, envelope = do(t, router, "PUT", "/api/tasks/1/toggle", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task marked as not done.", envelope["message"])

	// Delete, then the list is empty but still succeeds.
	rec, envelope = do(t, router, "DELETE", "/api/tasks/1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted.", envelope["message"])

	rec, envelope = do(t, router, "GET", "/api/tasks", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.Len(t, envelope["tasks"], 0)
	assert.Contains(t, rec.Body.String(), `"tasks":[]`)
}

func TestTaskOwnership(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")
	register(t, router, "mallory", "mallory@x.com", "secret2")
	aliceCookie := login(t, router, "alice", "secret1")
	malloryCookie := login(t, router, "mallory", "secret2")

	rec, envelope := do(t, router, "POST", "/api/tasks", map[string]string{"title": "private"}, aliceCookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := int64(envelope["task"].(map[string]any)["id"].(float64))
	require.Equal(t, int64(1), taskID)

	// Mallory sees none of Alice's tasks.
	rec, envelope = do(t, router, "GET", "/api/tasks", nil, malloryCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, envelope["tasks"], 0)

	// Mutations on an existing foreign task: 403. On a missing id: 404.
	for _, route := range []struct {
		method, path string
		body         any
	}{
		{"PUT", "/api/tasks/1", map[string]string{"title": "hijack"}},
		{"DELETE", "/api/tasks/1", nil},
		{"PUT", "/api/tasks/1/toggle", nil},
	} {
		rec, envelope = do(t, router, route.method, route.path, route.body, malloryCookie)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Access denied.", envelope["message"])
	}

	for _, route := range []struct {
		method, path string
		body         any
	}{
		{"PUT", "/api/tasks/99", map[string]string{"title": "ghost"}},
		{"DELETE", "/api/tasks/99", nil},
		{"PUT", "/api/tasks/99/toggle", nil},
	} {
		rec, envelope = do(t, router, route.method, route.path, route.body, malloryCookie)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Task not found.", envelope["message"])
	}

	// A non-numeric id behaves like a missing task.
	rec, _ = do(t, router, "DELETE", "/api/tasks/abc", nil, malloryCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Alice's task survived it all.
	rec, envelope = do(t, router, "GET", "/api/tasks", nil, aliceCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := envelope["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "private", tasks[0].(map[string]any)["title"])
}

func TestTaskListOrdering(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")
	cookie := login(t, router, "alice", "secret1")

	for _, title := range []string{"first", "second", "third"} {
		rec, _ := do(t, router, "POST", "/api/tasks", map[string]string{"title": title}, cookie)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, envelope := do(t, router, "GET", "/api/tasks", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := envelope["tasks"].([]any)
	require.Len(t, tasks, 3)

	var titles []string
	for _, raw := range tasks {
		titles = append(titles, raw.(map[string]any)["title"].(string))
	}
	assert.Equal(t, []string{"third", "second", "first"}, titles)
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter()
	register(t, router, "alice", "alice@x.com", "secret1")
	cookie := login(t, router, "alice", "secret1")

	req := httptest.NewRequest("POST", "/api/tasks", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body.")
}
