// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/knowloader/pkg/types"
)

const testUUID = "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b"

func TestMetadataFetcherFetch(t *testing.T) {
	var gotPath, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
		  "title": "Zellbiologie",
		  "contents": [
		    {"contentUrl": "https://cdn.example/1.pdf", "pageCount": 3},
		    {"contentUrl": "https://cdn.example/2.pdf", "pageCount": 5}
		  ],
		  "extra": true
		}`)
	}))
	defer ts.Close()

	provider := types.DefaultProviderConfig()
	provider.APIBase = ts.URL + "/knows/"
	f := NewMetadataFetcher(ts.Client(), types.HTTPConfig{UserAgent: "knowloader-test/0.1"}, provider)

	know, err := f.Fetch(context.Background(), testUUID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/knows/"+testUUID {
		t.Errorf("path = %q, want %q", gotPath, "/knows/"+testUUID)
	}
	if gotUA != "knowloader-test/0.1" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if know.Title != "Zellbiologie" {
		t.Errorf("Title = %q, want %q", know.Title, "Zellbiologie")
	}
	if len(know.Contents) != 2 {
		t.Fatalf("len(Contents) = %d, want 2", len(know.Contents))
	}
	if know.Contents[1].ContentURL != "https://cdn.example/2.pdf" || know.Contents[1].PageCount != 5 {
		t.Errorf("Contents[1] = %+v", know.Contents[1])
	}
}

func TestMetadataFetcherFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"not found", http.StatusNotFound, `{}`, "HTTP 404"},
		{"server error", http.StatusInternalServerError, ``, "HTTP 500"},
		{"not json", http.StatusOK, `<html>`, "parsing response"},
		{"missing title", http.StatusOK, `{"contents": []}`, "no title"},
		{"missing contents", http.StatusOK, `{"title": "t"}`, "no contents"},
		{"null contents", http.StatusOK, `{"title": "t", "contents": null}`, "no contents"},
		{"empty content url", http.StatusOK, `{"title": "t", "contents": [{"pageCount": 1}]}`, "no contentUrl"},
		{"wrong type", http.StatusOK, `{"title": 5, "contents": []}`, "parsing response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			provider := types.DefaultProviderConfig()
			provider.APIBase = ts.URL + "/knows/"
			f := NewMetadataFetcher(ts.Client(), types.HTTPConfig{}, provider)

			know, err := f.Fetch(context.Background(), testUUID)
			if know != nil {
				t.Errorf("know = %+v, want nil", know)
			}
			if !errors.Is(err, ErrMetadataUnavailable) {
				t.Fatalf("err = %v, want ErrMetadataUnavailable", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestMetadataFetcherEmptyContents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Leer", "contents": []}`)
	}))
	defer ts.Close()

	provider := types.DefaultProviderConfig()
	provider.APIBase = ts.URL + "/knows/"
	know, err := NewMetadataFetcher(ts.Client(), types.HTTPConfig{}, provider).Fetch(context.Background(), testUUID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(know.Contents) != 0 {
		t.Errorf("len(Contents) = %d, want 0", len(know.Contents))
	}
}

func TestMetadataFetcherUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := ts.URL
	ts.Close()

	provider := types.DefaultProviderConfig()
	provider.APIBase = base + "/knows/"
	_, err := NewMetadataFetcher(http.DefaultClient, types.HTTPConfig{}, provider).Fetch(context.Background(), testUUID)
	if !errors.Is(err, ErrMetadataUnavailable) {
		t.Errorf("err = %v, want ErrMetadataUnavailable", err)
	}
}
