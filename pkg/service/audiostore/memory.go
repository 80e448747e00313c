package audiostore

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// Memory is an in-process Store used for tests and local development
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

func (s *Memory) Put(ctx context.Context, labID, standupID string, data []byte, mimeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := objectName(labID, standupID, s.now())
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[name] = buf

	return name, nil
}

func (s *Memory) Get(ctx context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[ref]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "audio object not found", goerr.V("object", ref))
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *Memory) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, ref)
	return nil
}

func (s *Memory) Close() error {
	return nil
}
