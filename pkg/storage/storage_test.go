package storage

import (
	"errors"
	"testing"
)

func TestCleanKey(t *testing.T) {
	valid := []string{"hello.mdx", "a", "2024-image.png"}
	for _, key := range valid {
		if _, err := CleanKey(key); err != nil {
			t.Fatalf("CleanKey(%q) unexpected error %v", key, err)
		}
	}

	invalid := []string{"", " ", "..", ".", "a/b.mdx", `a\b`, " padded "}
	for _, key := range invalid {
		if _, err := CleanKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("CleanKey(%q) expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestCheckRevision(t *testing.T) {
	if err := CheckRevision("", false, ""); err != nil {
		t.Fatalf("unconditional write should pass, got %v", err)
	}
	if err := CheckRevision("abc", true, "abc"); err != nil {
		t.Fatalf("matching revision should pass, got %v", err)
	}
	if err := CheckRevision("abc", true, "def"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := CheckRevision("", false, "abc"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for missing document, got %v", err)
	}
}

func TestDigestIsStable(t *testing.T) {
	if Digest([]byte("x")) != Digest([]byte("x")) {
		t.Fatal("expected digest to be deterministic")
	}
	if Digest([]byte("x")) == Digest([]byte("y")) {
		t.Fatal("expected different content to produce different digests")
	}
}

func TestModeValid(t *testing.T) {
	for _, mode := range []Mode{ModeLocal, ModeGitHub, ModeDatabase, ModeMemory} {
		if !mode.Valid() {
			t.Fatalf("expected %s to be valid", mode)
		}
	}
	if Mode("s3").Valid() {
		t.Fatal("expected unknown mode to be invalid")
	}
}
