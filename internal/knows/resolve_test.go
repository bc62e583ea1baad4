// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"testing"

	"github.com/pdiddy/knowloader/pkg/types"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(types.DefaultProviderConfig())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"know page", "https://knowunity.de/knows/biologie-zelle-3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b", "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b", true},
		{"bare uuid", "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b", "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b", true},
		{"uppercase kept verbatim", "https://knowunity.de/knows/x-3F2B8C1A-9D4E-4B7F-8A21-0C6E5D4F3A2B", "3F2B8C1A-9D4E-4B7F-8A21-0C6E5D4F3A2B", true},
		{"first of two", "a-11111111-2222-3333-4444-555555555555-b-66666666-7777-8888-9999-aaaaaaaaaaaa", "11111111-2222-3333-4444-555555555555", true},
		{"uuid in query", "https://knowunity.de/app?id=3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b&ref=x", "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b", true},
		{"no uuid", "https://knowunity.de/knows/biologie-zelle", "", false},
		{"short group", "3f2b8c1-9d4e-4b7f-8a21-0c6e5d4f3a2b", "", false},
		{"non hex", "3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3z2b", "", false},
		{"empty", "", "", false},
	}
	r := newTestResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK := r.Resolve(tt.input)
			if gotOK != tt.wantOK {
				t.Errorf("Resolve(%q) ok = %v, want %v", tt.input, gotOK, tt.wantOK)
			}
			if gotID != tt.wantID {
				t.Errorf("Resolve(%q) id = %q, want %q", tt.input, gotID, tt.wantID)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	r := newTestResolver(t)
	const src = "https://knowunity.de/knows/x-3f2b8c1a-9d4e-4b7f-8a21-0c6e5d4f3a2b"
	id1, ok1 := r.Resolve(src)
	id2, ok2 := r.Resolve(src)
	if id1 != id2 || ok1 != ok2 {
		t.Errorf("Resolve not deterministic: (%q,%v) vs (%q,%v)", id1, ok1, id2, ok2)
	}
}

func TestValidPage(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://knowunity.de/knows/biologie-zelle-abc", true},
		{"https://knowunity.de/knows/", true},
		{"http://knowunity.de/knows/abc", false},
		{"https://knowunity.com/knows/abc", false},
		{"https://example.com/?u=https://knowunity.de/knows/abc", false},
		{"", false},
	}
	r := newTestResolver(t)
	for _, tt := range tests {
		if got := r.ValidPage(tt.input); got != tt.want {
			t.Errorf("ValidPage(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewResolverBadPattern(t *testing.T) {
	cfg := types.DefaultProviderConfig()
	cfg.IdentifierPattern = "("
	if _, err := NewResolver(cfg); err == nil {
		t.Error("expected error for invalid identifier pattern")
	}

	cfg = types.DefaultProviderConfig()
	cfg.PagePattern = "["
	if _, err := NewResolver(cfg); err == nil {
		t.Error("expected error for invalid page pattern")
	}
}
