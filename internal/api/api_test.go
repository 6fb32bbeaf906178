package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todo_system/internal/db"
	"todo_system/internal/repository"
	"todo_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.OpenSQLite(":memory:", true)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	return SetupRouter(Deps{
		DB:          gdb,
		Auth:        service.NewAuthService(repository.NewUserRepository(gdb), "api-test-secret", time.Hour),
		Todos:       service.NewTodoService(repository.NewTodoRepository(gdb), nil, time.Minute),
		CORSOrigins: []string{"*"},
	})
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// registerAndLogin creates a user and returns its bearer token
func registerAndLogin(t *testing.T, r http.Handler, username, email string) string {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username, "email": email, "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username, "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["access_token"].(string)
}

func createTodo(t *testing.T, r http.Handler, token string, body gin.H) map[string]any {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/v1/todos", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)
}

// =============================================================================
// Auth Flow Tests
// =============================================================================

func TestRegister_ReturnsProfileWithoutPassword(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "A@X.com", "password": "pw123456",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotZero(t, body["id"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestRegister_Conflict(t *testing.T) {
	r := setupTestRouter(t)
	registerAndLogin(t, r, "alice", "a@x.com")

	tests := []struct {
		name string
		body gin.H
	}{
		{"same username", gin.H{"username": "alice", "email": "other@x.com", "password": "pw123456"}},
		{"same email", gin.H{"username": "alice2", "email": "a@x.com", "password": "pw123456"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.JSONEq(t, `{"error":"Username or email already exists"}`, w.Body.String())
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	r := setupTestRouter(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"short username", gin.H{"username": "al", "email": "a@x.com", "password": "pw123456"}, "username"},
		{"bad email", gin.H{"username": "alice", "email": "nope", "password": "pw123456"}, "email"},
		{"short password", gin.H{"username": "alice", "email": "a@x.com", "password": "pw1"}, "password"},
		{"missing fields", gin.H{}, "username"},
		{"malformed body", `{"username":`, "body"},
		{"empty body", "", "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			assert.Contains(t, resp.Fields, tt.field)
		})
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	r := setupTestRouter(t)
	registerAndLogin(t, r, "alice", "a@x.com")

	wrongPassword := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice", "password": "wrong-pass",
	})
	unknownUser := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "nobody", "password": "pw123456",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestLogin_ReturnsTokenAndUser(t *testing.T) {
	r := setupTestRouter(t)
	registerAndLogin(t, r, "alice", "a@x.com")

	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice", "password": "pw123456",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, float64(3600), body["expires_in"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestProfile(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	w := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[map[string]any](t, w)["username"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// =============================================================================
// Todo Flow Tests
// =============================================================================

func TestTodoLifecycle(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	todo := createTodo(t, r, token, gin.H{"title": "Buy milk", "priority": "low"})
	assert.Equal(t, "Buy milk", todo["title"])
	assert.Equal(t, "low", todo["priority"])
	assert.Equal(t, false, todo["isCompleted"])
	path := fmt.Sprintf("/api/v1/todos/%.0f", todo["id"].(float64))

	w := doRequest(t, r, http.MethodGet, "/api/v1/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, float64(1), page["page"])
	assert.Equal(t, float64(10), page["limit"])
	assert.Equal(t, float64(1), page["totalPages"])
	assert.Len(t, page["data"], 1)

	w = doRequest(t, r, http.MethodPatch, path, token, gin.H{"isCompleted": true})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, true, updated["isCompleted"])
	assert.Equal(t, "Buy milk", updated["title"])
	assert.Equal(t, "low", updated["priority"])

	w = doRequest(t, r, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Todo deleted successfully"}`, w.Body.String())

	w = doRequest(t, r, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Todo not found"}`, w.Body.String())
}

func TestCreateTodo_DueDateAndUnknownFields(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	todo := createTodo(t, r, token, gin.H{
		"title":       "Plan trip",
		"description": "Book flights",
		"dueDate":     "2030-05-01",
		"owner":       "someone-else",
		"userId":      999,
	})

	assert.Equal(t, "Book flights", todo["description"])
	assert.True(t, strings.HasPrefix(todo["dueDate"].(string), "2030-05-01T00:00:00"))
	assert.NotEqual(t, float64(999), todo["userId"])
}

func TestCreateTodo_Validation(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing title", gin.H{"priority": "low"}, "title"},
		{"blank title", gin.H{"title": "   "}, "title"},
		{"bad priority", gin.H{"title": "x", "priority": "urgent"}, "priority"},
		{"bad due date", gin.H{"title": "x", "dueDate": "next week"}, "dueDate"},
		{"wrong type", gin.H{"title": "x", "isCompleted": "yes"}, "isCompleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/todos", token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode[ErrorResponse](t, w).Fields, tt.field)
		})
	}
}

func TestTodos_RequireToken(t *testing.T) {
	r := setupTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/todos"},
		{http.MethodPost, "/api/v1/todos"},
		{http.MethodGet, "/api/v1/todos/1"},
		{http.MethodPatch, "/api/v1/todos/1"},
		{http.MethodDelete, "/api/v1/todos/1"},
	} {
		w := doRequest(t, r, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/todos", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTodos_OwnerIsolation(t *testing.T) {
	r := setupTestRouter(t)
	alice := registerAndLogin(t, r, "alice", "a@x.com")
	bob := registerAndLogin(t, r, "bob", "b@x.com")

	todo := createTodo(t, r, alice, gin.H{"title": "Secret"})
	path := fmt.Sprintf("/api/v1/todos/%.0f", todo["id"].(float64))

	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodPatch, path, bob, gin.H{"title": "mine"}).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodDelete, path, bob, nil).Code)

	w := doRequest(t, r, http.MethodGet, "/api/v1/todos", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustMarshal(t, decode[map[string]any](t, w)["data"])))

	w = doRequest(t, r, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Secret", decode[map[string]any](t, w)["title"])
}

func TestTodos_BadID(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	for _, id := range []string{"abc", "0", "-1"} {
		w := doRequest(t, r, http.MethodGet, "/api/v1/todos/"+id, token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Contains(t, decode[ErrorResponse](t, w).Fields, "id")
	}
}

func TestListTodos_QueryValidation(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	tests := []struct {
		query string
		field string
	}{
		{"status=done", "status"},
		{"priority=urgent", "priority"},
		{"page=abc", "page"},
		{"limit=xyz", "limit"},
		{"page=0", "page"},
		{"limit=0", "limit"},
		{"sortBy=password", "sortBy"},
		{"sortOrder=sideways", "sortOrder"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, "/api/v1/todos?"+tt.query, token, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode[ErrorResponse](t, w).Fields, tt.field)
		})
	}
}

func TestListTodos_FilterSearchSortPaginate(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")

	createTodo(t, r, token, gin.H{"title": "Buy milk", "priority": "high"})
	createTodo(t, r, token, gin.H{"title": "Buy bread", "priority": "high", "isCompleted": true})
	createTodo(t, r, token, gin.H{"title": "Walk dog", "priority": "low"})
	for i := 0; i < 12; i++ {
		createTodo(t, r, token, gin.H{"title": fmt.Sprintf("Chore %02d", i)})
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/todos?search=BUY&priority=high&status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, w)
	require.Len(t, page["data"], 1)
	assert.Equal(t, "Buy milk", page["data"].([]any)[0].(map[string]any)["title"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/todos?page=2&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[map[string]any](t, w)
	assert.Equal(t, float64(15), page["total"])
	assert.Equal(t, float64(2), page["totalPages"])
	assert.Len(t, page["data"], 5)

	w = doRequest(t, r, http.MethodGet, "/api/v1/todos?sortBy=title&sortOrder=asc&limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode[map[string]any](t, w)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Buy bread", data[0].(map[string]any)["title"])
	assert.Equal(t, "Buy milk", data[1].(map[string]any)["title"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/todos?page=9", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[map[string]any](t, w)
	assert.Empty(t, page["data"])
	assert.Equal(t, float64(15), page["total"])
}

func TestListTodos_HugePagination(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")
	for _, title := range []string{"one", "two", "three"} {
		createTodo(t, r, token, gin.H{"title": title})
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/todos?page=9223372036854775807&limit=2", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "page")

	w = doRequest(t, r, http.MethodGet, "/api/v1/todos?limit=9223372036854775807", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[map[string]any](t, w)
	assert.Equal(t, float64(3), page["total"])
	assert.Equal(t, float64(1), page["totalPages"])
	assert.Len(t, page["data"], 3)

	w = doRequest(t, r, http.MethodGet, "/api/v1/todos?page=4611686018427387904&limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page = decode[map[string]any](t, w)
	assert.Empty(t, page["data"])
	assert.Equal(t, float64(2), page["totalPages"])
}

func TestUpdateTodo_Validation(t *testing.T) {
	r := setupTestRouter(t)
	token := registerAndLogin(t, r, "alice", "a@x.com")
	todo := createTodo(t, r, token, gin.H{"title": "Buy milk"})
	path := fmt.Sprintf("/api/v1/todos/%.0f", todo["id"].(float64))

	w := doRequest(t, r, http.MethodPatch, path, token, gin.H{"priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPatch, path, token, gin.H{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, path, token, nil)
	assert.Equal(t, "medium", decode[map[string]any](t, w)["priority"])
}

// =============================================================================
// Infrastructure Route Tests
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])

	w = doRequest(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "todo_http_requests_total")

	w = doRequest(t, r, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
