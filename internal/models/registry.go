package models

import (
	"context"
	"sync"
	"time"
)

// FileURLGenerator produces signed URLs for stored objects.
type FileURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

var (
	registryMu   sync.RWMutex
	urlGenerator FileURLGenerator
)

// RegisterFileURLGenerator wires the storage backend used by File.AfterFind.
func RegisterFileURLGenerator(g FileURLGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = g
}
