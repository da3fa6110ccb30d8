package contactsync

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("https://example.com", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestFetchPeople(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"people":[
			{"id":101,"firstName":"Jordan","lastName":"Reyes","email":"jordan@example.com","phone":"555-0100"},
			{"id":102,"firstName":"  Sam ","lastName":"","email":"sam@example.com","phone":""}
		]}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL+"/", "key-123")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	people, err := client.FetchPeople(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/v1/people" {
		t.Fatalf("path = %q", gotPath)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key-123:"))
	if gotAuth != wantAuth {
		t.Fatalf("auth header = %q, want %q", gotAuth, wantAuth)
	}

	want := []Person{
		{RemoteID: "101", Name: "Jordan Reyes", Email: "jordan@example.com", Phone: "555-0100"},
		{RemoteID: "102", Name: "Sam", Email: "sam@example.com"},
	}
	if !reflect.DeepEqual(people, want) {
		t.Fatalf("people = %#v, want %#v", people, want)
	}
}

func TestFetchPeopleNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := New(srv.URL, "bad-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchPeople(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchPeopleUnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[]}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "key-123")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchPeople(context.Background()); err == nil {
		t.Fatal("expected error on response without people field")
	}
}

func TestFetchPeopleEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"people":[]}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "key-123")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	people, err := client.FetchPeople(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(people) != 0 {
		t.Fatalf("expected empty list, got %#v", people)
	}
}
