package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// Digest returns the revision marker used by backends that do not assign
// their own: the hex SHA-256 of the document bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CheckRevision enforces a conditional write. An empty expected revision
// always passes; otherwise the stored revision must match, and a missing
// document counts as a conflict.
func CheckRevision(current string, exists bool, expected string) error {
	if expected == "" {
		return nil
	}
	if !exists || current != expected {
		return ErrConflict
	}
	return nil
}

// CleanKey validates a flat document key. Keys may not be empty, contain
// path separators, or refer to the current/parent directory.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || trimmed != key || strings.ContainsAny(key, `/\`) {
		return "", ErrInvalidKey
	}
	if cleaned := path.Clean(key); cleaned != key || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return key, nil
}
