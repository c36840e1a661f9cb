package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeWalletAPI emulates the genericClass/genericObject endpoints with an
// in-memory class store.
type fakeWalletAPI struct {
	mu          sync.Mutex
	classes     map[string]bool
	createCalls int
	objectCalls int
	objectCode  int
}

func newFakeWalletAPI() *fakeWalletAPI {
	return &fakeWalletAPI{classes: make(map[string]bool), objectCode: http.StatusOK}
}

func (f *fakeWalletAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/genericClass/"):
			classID := strings.TrimPrefix(r.URL.Path, "/genericClass/")
			if f.classes[classID] {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/genericClass":
			f.createCalls++
			var class genericClass
			if err := json.NewDecoder(r.Body).Decode(&class); err != nil {
				t.Errorf("invalid class payload: %v", err)
			}
			if f.classes[class.ID] {
				w.WriteHeader(http.StatusConflict)
				return
			}
			f.classes[class.ID] = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/genericObject":
			f.objectCalls++
			w.WriteHeader(f.objectCode)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func TestEnsureClassCreatesMissingClass(t *testing.T) {
	api := newFakeWalletAPI()
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))

	result, err := client.EnsureClass(context.Background(), "issuer.receipt_class_1", ReceiptClassTemplate(2))
	if err != nil {
		t.Fatalf("EnsureClass returned error: %v", err)
	}
	if result != ClassCreated {
		t.Fatalf("expected ClassCreated, got %v", result)
	}
	if api.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", api.createCalls)
	}
}

func TestEnsureClassIsIdempotent(t *testing.T) {
	api := newFakeWalletAPI()
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))
	ctx := context.Background()

	if _, err := client.EnsureClass(ctx, "issuer.receipt_class_1", ReceiptClassTemplate(2)); err != nil {
		t.Fatalf("first EnsureClass returned error: %v", err)
	}
	result, err := client.EnsureClass(ctx, "issuer.receipt_class_1", ReceiptClassTemplate(2))
	if err != nil {
		t.Fatalf("second EnsureClass returned error: %v", err)
	}

	if result != ClassAlreadyExists {
		t.Fatalf("expected ClassAlreadyExists on second call, got %v", result)
	}
	if api.createCalls != 1 {
		t.Fatalf("expected exactly one create call across both EnsureClass calls, got %d", api.createCalls)
	}
}

func TestEnsureClassTreatsCreateConflictAsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))

	result, err := client.EnsureClass(context.Background(), "issuer.c", ReceiptClassTemplate(1))
	if err != nil {
		t.Fatalf("EnsureClass returned error: %v", err)
	}
	if result != ClassAlreadyExists {
		t.Fatalf("expected ClassAlreadyExists for 409 create, got %v", result)
	}
}

func TestEnsureClassUnexpectedLookupStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))

	_, err := client.EnsureClass(context.Background(), "issuer.c", ReceiptClassTemplate(1))
	if !errors.Is(err, ErrClassProvisioning) {
		t.Fatalf("expected ErrClassProvisioning, got %v", err)
	}
}

func TestCreateObjectAcceptsConflict(t *testing.T) {
	api := newFakeWalletAPI()
	api.objectCode = http.StatusConflict
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))

	obj := NewBuilder("issuer").BuildReceiptObject(ReceiptData{}, "g", 1)
	if err := client.CreateObject(context.Background(), obj); err != nil {
		t.Fatalf("expected 409 treated as success, got %v", err)
	}
}

func TestCreateObjectFailureStatus(t *testing.T) {
	api := newFakeWalletAPI()
	api.objectCode = http.StatusBadRequest
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	client := NewClient(server.Client(), WithBaseURL(server.URL))

	obj := NewBuilder("issuer").BuildReceiptObject(ReceiptData{}, "g", 1)
	if err := client.CreateObject(context.Background(), obj); !errors.Is(err, ErrObjectCreation) {
		t.Fatalf("expected ErrObjectCreation, got %v", err)
	}
}
