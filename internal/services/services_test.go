package services_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kelsos/atom-tasks/internal/client"
	"github.com/kelsos/atom-tasks/internal/config"
	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/services"
	"github.com/kelsos/atom-tasks/internal/signing"
)

const testSecret = "service-test-secret"

type request struct {
	method string
	path   string
	data   json.RawMessage
}

// backend records every request and answers with the canned body for
// "METHOD /path".
type backend struct {
	t         *testing.T
	signer    *signing.Signer
	responses map[string]string
	statuses  map[string]int
	requests  []request
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := request{method: r.Method, path: r.URL.Path}

	if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
		raw, _ := io.ReadAll(r.Body)
		var envelope models.SignedEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.SignedToken == "" {
			b.t.Errorf("%s %s: body is not a signed envelope: %s", r.Method, r.URL.Path, raw)
		} else if payload, err := b.signer.Verify(envelope.SignedToken); err != nil {
			b.t.Errorf("%s %s: token does not verify: %v", r.Method, r.URL.Path, err)
		} else {
			rec.data = payload.Data
		}
	}
	b.requests = append(b.requests, rec)

	key := r.Method + " " + r.URL.Path
	if code, ok := b.statuses[key]; ok {
		w.WriteHeader(code)
	}
	if body, ok := b.responses[key]; ok {
		_, _ = io.WriteString(w, body)
	}
}

func setup(t *testing.T, responses map[string]string) (*backend, *services.UserService, *services.TaskService) {
	t.Helper()

	signer, err := signing.NewSigner(testSecret, "1h")
	if err != nil {
		t.Fatal(err)
	}
	b := &backend{t: t, signer: signer, responses: responses, statuses: map[string]int{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.APIURL = srv.URL + "/api"
	sc := signing.NewClient(client.NewAPIClient(cfg), signer)
	return b, services.NewUserService(sc), services.NewTaskService(sc)
}

func TestUserService_FindByEmail(t *testing.T) {
	b, users, _ := setup(t, map[string]string{
		"POST /api/users/find": `{"success":true,"message":"ok","data":{"id":"user123","exists":true}}`,
	})

	lookup, err := users.FindByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if lookup.ID != "user123" || !lookup.Exists {
		t.Errorf("unexpected lookup %+v", lookup)
	}
	if len(b.requests) != 1 || string(b.requests[0].data) != `{"email":"test@example.com"}` {
		t.Errorf("unexpected signed payload %+v", b.requests)
	}
}

func TestUserService_FindByEmail_NotFound(t *testing.T) {
	b, users, _ := setup(t, map[string]string{
		"POST /api/users/find": `{"success":false,"message":"User not found"}`,
	})
	b.statuses["POST /api/users/find"] = http.StatusNotFound

	_, err := users.FindByEmail(context.Background(), "new@example.com")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	var opErr *apperrors.OperationError
	if !apperrors.As(err, &opErr) || opErr.Message != "User not found" || opErr.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected error details %+v", opErr)
	}
}

func TestUserService_ApplicationFailure(t *testing.T) {
	_, users, _ := setup(t, map[string]string{
		"POST /api/users/create": `{"success":false,"message":"Email already registered"}`,
	})

	_, err := users.Create(context.Background(), "dup@example.com")
	var opErr *apperrors.OperationError
	if !apperrors.As(err, &opErr) || opErr.Kind != apperrors.KindApplication || opErr.Message != "Email already registered" {
		t.Fatalf("expected application error, got %v", err)
	}
}

func TestUserService_CreateAndList(t *testing.T) {
	_, users, _ := setup(t, map[string]string{
		"POST /api/users/create": `{"success":true,"message":"created","data":{"id":"new-user-123"}}`,
		"GET /api/users":         `{"success":true,"message":"ok","data":[{"id":"a","email":"a@x.io"},{"id":"b","email":"b@x.io"}]}`,
	})

	id, err := users.Create(context.Background(), "new@example.com")
	if err != nil || id != "new-user-123" {
		t.Fatalf("Create() = %q, %v", id, err)
	}

	all, err := users.GetAll(context.Background())
	if err != nil || len(all) != 2 || all[1].Email != "b@x.io" {
		t.Fatalf("GetAll() = %+v, %v", all, err)
	}
}

func TestTaskService_Endpoints(t *testing.T) {
	ok := `{"success":true,"message":"ok"}`
	b, _, tasks := setup(t, map[string]string{
		"GET /api/tasks/user/user123":  `{"success":true,"message":"ok","data":[{"id":1,"userId":"user123","title":"a","completed":false,"created_at":"2024-01-01T00:00:00Z"}]}`,
		"GET /api/tasks":               `{"success":true,"message":"ok","data":[]}`,
		"POST /api/tasks/user/user123": ok,
		"PUT /api/tasks/1":             ok,
		"PATCH /api/tasks/1/status":    ok,
	})
	b.statuses["DELETE /api/tasks/1"] = http.StatusNoContent
	ctx := context.Background()

	list, err := tasks.ListForUser(ctx, "user123")
	if err != nil || len(list) != 1 || list[0].ID != "1" {
		t.Fatalf("ListForUser() = %+v, %v", list, err)
	}
	if _, err := tasks.GetAll(ctx); err != nil {
		t.Fatal(err)
	}

	input := models.TaskInput{Title: "Write docs", Description: "README"}
	if err := tasks.Create(ctx, "user123", input); err != nil {
		t.Fatal(err)
	}
	if err := tasks.Update(ctx, "1", input); err != nil {
		t.Fatal(err)
	}
	if err := tasks.UpdateStatus(ctx, "1", true); err != nil {
		t.Fatal(err)
	}
	if err := tasks.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		method string
		path   string
		data   string
	}{
		{http.MethodGet, "/api/tasks/user/user123", ""},
		{http.MethodGet, "/api/tasks", ""},
		{http.MethodPost, "/api/tasks/user/user123", `{"title":"Write docs","description":"README"}`},
		{http.MethodPut, "/api/tasks/1", `{"title":"Write docs","description":"README"}`},
		{http.MethodPatch, "/api/tasks/1/status", `{"completed":true}`},
		{http.MethodDelete, "/api/tasks/1", ""},
	}
	if len(b.requests) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(b.requests))
	}
	for i, w := range want {
		got := b.requests[i]
		if got.method != w.method || got.path != w.path || string(got.data) != w.data {
			t.Errorf("request %d = %s %s %s, want %s %s %s", i, got.method, got.path, got.data, w.method, w.path, w.data)
		}
	}
}

func TestTaskService_TransportError(t *testing.T) {
	_, _, tasks := setup(t, nil)

	cfg := config.NewConfig()
	cfg.APIURL = "http://127.0.0.1:1/api"
	signer, _ := signing.NewSigner(testSecret, "1h")
	unreachable := services.NewTaskService(signing.NewClient(client.NewAPIClient(cfg), signer))

	err := unreachable.UpdateStatus(context.Background(), "1", true)
	if !apperrors.IsKind(err, apperrors.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	// An empty 200 body decodes to success:false.
	if err := tasks.Update(context.Background(), "9", models.TaskInput{Title: "t", Description: "d"}); !apperrors.IsKind(err, apperrors.KindApplication) {
		t.Fatalf("expected application error, got %v", err)
	}
}
