package video

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-urdfpose/internal/log"
)

// Video is an uploaded file with its open source and markers.
type Video struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Info     Info      `json:"info"`
	Uploaded time.Time `json:"uploaded"`
	Markers  *Markers  `json:"-"`

	src *Source
}

// Source returns the video's open source.
func (v *Video) Source() *Source { return v.src }

// Library stores uploaded videos in a directory.
type Library struct {
	dir string

	mu     sync.RWMutex
	videos map[string]*Video
}

// NewLibrary stores uploads under dir, creating it if needed.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}
	return &Library{dir: dir, videos: make(map[string]*Video)}, nil
}

// Save writes r to disk under a new ID and opens it. name is the client's
// file name and only its extension is used for the stored file.
func (l *Library) Save(name string, r io.Reader) (*Video, error) {
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(name))
	path := filepath.Join(l.dir, id+ext)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	src, err := Open(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	v := &Video{
		ID:       id,
		Name:     filepath.Base(name),
		Info:     src.Info(),
		Uploaded: time.Now(),
		Markers:  &Markers{},
		src:      src,
	}

	l.mu.Lock()
	l.videos[id] = v
	l.mu.Unlock()

	log.Info("video stored", "id", id, "name", v.Name, "duration", v.Info.Duration)
	return v, nil
}

// Get returns a video by ID.
func (l *Library) Get(id string) (*Video, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.videos[id]
	if !ok {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, id)
	}
	return v, nil
}

// List returns every video, oldest first.
func (l *Library) List() []*Video {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Video, 0, len(l.videos))
	for _, v := range l.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Uploaded.Before(out[j].Uploaded) })
	return out
}

// Delete closes a video and removes its file.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	v, ok := l.videos[id]
	delete(l.videos, id)
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: video %s", ErrNotFound, id)
	}

	path := v.src.Path()
	v.src.Close()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove video file: %w", err)
	}
	return nil
}

// Close closes every open video. Files are left on disk.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range l.videos {
		v.src.Close()
	}
}
