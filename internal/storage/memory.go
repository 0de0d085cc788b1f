package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
)

// Memory is an in-process AssetStore for development and tests.
type Memory struct {
	mu          sync.Mutex
	next        int
	objects     map[string]File
	deleted     []string
	failUploads bool
	failDeletes bool
}

var ErrInjected = errors.New("storage: injected failure")

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]File)}
}

func (m *Memory) Upload(_ context.Context, f File) (models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUploads {
		return models.Image{}, ErrInjected
	}
	m.next++
	id := "mem-" + strconv.Itoa(m.next)
	m.objects[id] = f
	return models.Image{URL: "memory://" + id, PublicID: id}, nil
}

func (m *Memory) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDeletes {
		return ErrInjected
	}
	delete(m.objects, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}

// Has reports whether publicID is currently stored.
func (m *Memory) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[publicID]
	return ok
}

// Deleted returns every id passed to a successful Delete, in call order.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// SetFailUploads makes every following Upload fail with ErrInjected.
func (m *Memory) SetFailUploads(v bool) {
	m.mu.Lock()
	m.failUploads = v
	m.mu.Unlock()
}

func (m *Memory) SetFailDeletes(v bool) {
	m.mu.Lock()
	m.failDeletes = v
	m.mu.Unlock()
}
