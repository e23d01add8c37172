// Package storage defines the garden file-system abstraction.
package storage

import "github.com/hollybrook/arbor/internal/models"

// Provider is the interface for garden file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to garden root).
	List(dir string) ([]models.ContentMetadata, error)
	// Read returns the raw bytes of the file at path (relative to garden root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to garden root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to garden root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to garden root).
	Move(oldPath, newPath string) error
}
