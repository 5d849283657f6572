package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// newTestServer answers every request with status and body, recording the last request
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.body = string(data)
		rec.contentType = r.Header.Get("Content-Type")
		rec.accept = r.Header.Get("Accept")
		rec.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

type recordedRequest struct {
	mu          sync.Mutex
	method      string
	path        string
	body        string
	contentType string
	accept      string
}

func TestOperations_MethodAndPath(t *testing.T) {
	payload := map[string]any{"title": "x"}

	tests := []struct {
		name       string
		call       func(c *Client) (any, error)
		wantMethod string
		wantPath   string
		wantBody   bool
	}{
		{"list", func(c *Client) (any, error) { return c.List(context.Background()) }, "GET", "/tasks", false},
		{"create", func(c *Client) (any, error) { return c.Create(context.Background(), payload) }, "POST", "/tasks", true},
		{"get", func(c *Client) (any, error) { return c.Get(context.Background(), "5") }, "GET", "/tasks/5", false},
		{"update", func(c *Client) (any, error) { return c.Update(context.Background(), "5", payload) }, "PUT", "/tasks/5", true},
		{"remove", func(c *Client) (any, error) { return c.Remove(context.Background(), "5") }, "DELETE", "/tasks/5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, rec := newTestServer(t, http.StatusOK, `{}`)
			client := New(server.URL + "/")

			if _, err := tt.call(client); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.method != tt.wantMethod {
				t.Errorf("method = %s, want %s", rec.method, tt.wantMethod)
			}
			if rec.path != tt.wantPath {
				t.Errorf("path = %s, want %s", rec.path, tt.wantPath)
			}
			if rec.accept != "" {
				t.Errorf("Accept header should not be set, got %q", rec.accept)
			}
			if tt.wantBody {
				if rec.contentType != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", rec.contentType)
				}
				if rec.body != `{"title":"x"}` {
					t.Errorf("body = %s", rec.body)
				}
			} else {
				if rec.contentType != "" {
					t.Errorf("Content-Type should not be set without a body, got %q", rec.contentType)
				}
				if rec.body != "" {
					t.Errorf("expected empty request body, got %q", rec.body)
				}
			}
		})
	}
}

func TestCollection_RebindsPath(t *testing.T) {
	server, rec := newTestServer(t, http.StatusOK, `[]`)
	tasks := New(server.URL)
	habits := tasks.Collection(CollectionHabits)

	if _, err := habits.Get(context.Background(), "7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/habits/7" {
		t.Errorf("path = %s, want /habits/7", rec.path)
	}
	if tasks.Name() != CollectionTasks {
		t.Errorf("original client changed collection to %s", tasks.Name())
	}

	schedules := New(server.URL, WithCollection("/schedules/"))
	if _, err := schedules.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/schedules" {
		t.Errorf("path = %s, want /schedules", rec.path)
	}
}

func TestSuccess_EmptyBodyIsNil(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent, http.StatusAccepted} {
		server, _ := newTestServer(t, status, "")
		result, err := New(server.URL).Remove(context.Background(), "1")
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if result != nil {
			t.Errorf("status %d: result = %#v, want nil", status, result)
		}
	}
}

func TestSuccess_ReturnsParsedJSON(t *testing.T) {
	values := []any{
		map[string]any{"id": float64(1), "title": "x", "done": false, "memo": nil},
		[]any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}},
		[]any{},
		"plain",
		float64(3),
	}

	for _, want := range values {
		data, _ := json.Marshal(want)
		server, _ := newTestServer(t, http.StatusOK, string(data))

		got, err := New(server.URL).List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", data, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("result = %#v, want %#v", got, want)
		}
	}
}

func TestSuccess_InvalidJSONIsDecodeError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, "not json")

	result, err := New(server.URL).List(context.Background())
	if result != nil {
		t.Errorf("result should be nil on error, got %#v", result)
	}
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", apiErr.Status)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("decode error should wrap the parse error, got %v", errors.Unwrap(err))
	}
}

func TestFailure_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantKind    Kind
		wantDetail  any
	}{
		{
			name:        "validation with detail",
			status:      422,
			body:        `{"detail":[{"loc":["title"],"msg":"required"}]}`,
			wantMessage: "input is invalid",
			wantKind:    KindValidation,
			wantDetail:  []any{map[string]any{"loc": []any{"title"}, "msg": "required"}},
		},
		{
			name:        "validation without detail field",
			status:      422,
			body:        `{"error":"bad"}`,
			wantMessage: "input is invalid",
			wantKind:    KindValidation,
		},
		{
			name:        "validation with array body",
			status:      422,
			body:        `[1,2]`,
			wantMessage: "input is invalid",
			wantKind:    KindValidation,
		},
		{
			name:        "validation with empty body",
			status:      422,
			body:        ``,
			wantMessage: "input is invalid",
			wantKind:    KindValidation,
		},
		{
			name:        "not found ignores detail",
			status:      404,
			body:        `{"detail":"Task not found"}`,
			wantMessage: "resource not found",
			wantKind:    KindNotFound,
		},
		{
			name:        "server error with malformed body",
			status:      500,
			body:        `<html>oops`,
			wantMessage: "server error (500)",
			wantKind:    KindServer,
		},
		{
			name:        "bad request ignores detail",
			status:      400,
			body:        `{"detail":"nope"}`,
			wantMessage: "server error (400)",
			wantKind:    KindServer,
		},
		{
			name:        "service unavailable empty body",
			status:      503,
			body:        ``,
			wantMessage: "server error (503)",
			wantKind:    KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.body)

			result, err := New(server.URL).Create(context.Background(), map[string]any{"title": ""})
			if result != nil {
				t.Errorf("result should be nil on error, got %#v", result)
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", apiErr.Kind, tt.wantKind)
			}
			if !reflect.DeepEqual(apiErr.Detail, tt.wantDetail) {
				t.Errorf("detail = %#v, want %#v", apiErr.Detail, tt.wantDetail)
			}
			if StatusOf(err) != tt.status {
				t.Errorf("StatusOf = %d, want %d", StatusOf(err), tt.status)
			}
		})
	}
}

func TestFailure_ServerMessageContainsStatus(t *testing.T) {
	for _, status := range []int{400, 401, 403, 409, 418, 500, 502, 599} {
		server, _ := newTestServer(t, status, "")
		_, err := New(server.URL).List(context.Background())
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if !strings.Contains(err.Error(), strconv.Itoa(status)) {
			t.Errorf("status %d: message %q does not contain the code", status, err.Error())
		}
		if !errors.Is(err, ErrServer) {
			t.Errorf("status %d: expected server error kind", status)
		}
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result, err := New(url).List(context.Background())
	if result != nil {
		t.Errorf("result should be nil, got %#v", result)
	}
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("transport error status = %d, want 0", StatusOf(err))
	}
	if errors.Unwrap(err) == nil {
		t.Error("transport error should wrap the cause")
	}
}

func TestCancelledContextIsTransportError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL).Get(ctx, "1")
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestEndToEnd_CreateScenario(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		server, rec := newTestServer(t, http.StatusCreated, `{"id":1,"title":"x"}`)

		result, err := New(server.URL).Create(context.Background(), map[string]any{"title": "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]any{"id": float64(1), "title": "x"}
		if !reflect.DeepEqual(result, want) {
			t.Errorf("result = %#v, want %#v", result, want)
		}
		if rec.body != `{"title":"x"}` {
			t.Errorf("request body = %s", rec.body)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusUnprocessableEntity, `{"detail":[{"loc":["title"],"msg":"required"}]}`)

		result, err := New(server.URL).Create(context.Background(), map[string]any{"title": "x"})
		if result != nil {
			t.Errorf("result should be nil, got %#v", result)
		}
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}

		var apiErr *Error
		errors.As(err, &apiErr)
		if apiErr.Status != 422 || apiErr.Message != "input is invalid" {
			t.Errorf("error = %d %q", apiErr.Status, apiErr.Message)
		}

		issues := apiErr.Issues()
		if len(issues) != 1 {
			t.Fatalf("issues = %d, want 1", len(issues))
		}
		if issues[0].Msg != "required" || !reflect.DeepEqual(issues[0].Loc, []string{"title"}) {
			t.Errorf("issue = %+v", issues[0])
		}
	})
}

func TestConcurrentCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		_, _ = w.Write([]byte(`{"id":"` + id + `"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			result, err := client.Get(context.Background(), id)
			if err != nil {
				errs <- err
				return
			}
			if got := result.(map[string]any)["id"]; got != id {
				errs <- errors.New("mismatched result for " + id)
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestErrorIs_DistinguishesKinds(t *testing.T) {
	err := statusError(404, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Error("404 should match ErrNotFound")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("404 should not match ErrValidation")
	}
	if IsValidation(err) || !IsNotFound(err) {
		t.Error("helpers disagree with errors.Is")
	}
}

func TestObserver_SeesEveryCall(t *testing.T) {
	server, _ := newTestServer(t, http.StatusUnprocessableEntity, `{"detail":[]}`)

	var calls []Call
	client := New(server.URL, WithObserver(func(c Call) { calls = append(calls, c) }))

	_, err := client.Collection("habits").Update(context.Background(), "4", map[string]any{"title": "x"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("observer saw %d calls, want 1", len(calls))
	}
	c := calls[0]
	if c.Collection != "habits" || c.Operation != OpUpdate || c.Method != http.MethodPut || c.Status != http.StatusUnprocessableEntity {
		t.Errorf("call = %+v", c)
	}
	if !strings.HasSuffix(c.URL, "/habits/4") {
		t.Errorf("URL = %q", c.URL)
	}
	if c.RequestSize != int64(len(`{"title":"x"}`)) {
		t.Errorf("RequestSize = %d", c.RequestSize)
	}
	if c.ResponseSize != int64(len(`{"detail":[]}`)) {
		t.Errorf("ResponseSize = %d", c.ResponseSize)
	}
	if !errors.Is(c.Err, ErrValidation) {
		t.Errorf("Err = %v, want the returned error", c.Err)
	}
}

func TestObserver_TransportFailureHasNoStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var got Call
	_, _ = New(url, WithObserver(func(c Call) { got = c })).List(context.Background())
	if got.Status != 0 || !IsTransport(got.Err) {
		t.Errorf("call = %+v, want status 0 and a transport error", got)
	}
}
