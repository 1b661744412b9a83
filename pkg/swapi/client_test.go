package swapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MASAKi-cell/personstore/pkg/people"
)

func TestClientList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/people" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]people.Person{
			{ID: 1, Name: "Luke"},
			{ID: 2, Name: "Leia"},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Luke" {
		t.Errorf("Unexpected list: %v", list)
	}
}

func TestClientSaveUsesEditID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/people/1" {
			t.Errorf("Expected /people/1, got %s", r.URL.Path)
		}

		var p people.Person
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("Decode body: %v", err)
		}
		json.NewEncoder(w).Encode(p)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	editID := 1
	saved, err := c.Save(context.Background(), people.Person{ID: 1, Name: "Luke X"}, &editID)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Name != "Luke X" {
		t.Errorf("Expected canonical record back, got %v", saved)
	}
}

func TestClientSaveErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	_, err := c.Save(context.Background(), people.Person{ID: 1}, nil)
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
}

func TestClientBaseURLTrailingSlash(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people" {
			t.Errorf("Expected /people, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]people.Person{})
	}))
	defer ts.Close()

	c := NewClient(ts.URL + "/")
	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("List failed: %v", err)
	}
}
