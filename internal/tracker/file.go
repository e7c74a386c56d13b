package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/taskscout/taskscout/models"
)

// Supported snapshot file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Snapshot is the document a file source reads and writes.
type Snapshot struct {
	Items  []models.WorkItem `json:"items" yaml:"items"`
	Roster []string          `json:"roster,omitempty" yaml:"roster,omitempty"`
}

// FileSource reads a work item snapshot from a single file and writes
// created subtask items back into it. The filesystem is injected so tests
// run against memory.
type FileSource struct {
	fs     afero.Fs
	path   string
	format string
}

// NewFileSource opens a snapshot file source. An empty format is inferred
// from the file extension, defaulting to JSON.
func NewFileSource(fsys afero.Fs, path, format string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}

	f := strings.ToLower(format)
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			f = FormatYAML
		default:
			f = FormatJSON
		}
	}
	if f != FormatJSON && f != FormatYAML {
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}

	return &FileSource{fs: fsys, path: path, format: f}, nil
}

// FetchItems loads and validates the snapshot items. Malformed items fail
// here, before any engine runs.
func (s *FileSource) FetchItems(_ context.Context) ([]models.WorkItem, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, item := range snap.Items {
		if err := models.ValidateStruct(item); err != nil {
			return nil, fmt.Errorf("snapshot item %d: %w", item.ID, err)
		}
	}
	return snap.Items, nil
}

// FetchRoster loads the roster recorded in the snapshot, if any.
func (s *FileSource) FetchRoster(_ context.Context) ([]string, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return snap.Roster, nil
}

// CreateItem appends a new item to the snapshot file with the next free
// identifier.
func (s *FileSource) CreateItem(_ context.Context, item NewItem) (ItemRef, error) {
	snap, err := s.load()
	if err != nil {
		return ItemRef{}, err
	}

	nextID := 1
	for _, existing := range snap.Items {
		if existing.ID >= nextID {
			nextID = existing.ID + 1
		}
	}

	now := time.Now().UTC()
	created := models.WorkItem{
		ID:        nextID,
		Title:     item.Title,
		Body:      item.Body,
		Labels:    item.Labels,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Assignee != "" {
		created.Assignees = []string{item.Assignee}
	}
	if item.Milestone != "" {
		created.Milestone = &models.Milestone{Title: item.Milestone}
	}

	snap.Items = append(snap.Items, created)
	if err := s.save(snap); err != nil {
		return ItemRef{}, err
	}
	return ItemRef{ID: strconv.Itoa(nextID), Title: item.Title}, nil
}

// AddChecklist appends a subtask checklist to the parent item body.
func (s *FileSource) AddChecklist(_ context.Context, parentID int, refs []ItemRef) error {
	snap, err := s.load()
	if err != nil {
		return err
	}

	for i := range snap.Items {
		if snap.Items[i].ID != parentID {
			continue
		}
		snap.Items[i].Body += checklistMarkdown(refs)
		snap.Items[i].UpdatedAt = time.Now().UTC()
		return s.save(snap)
	}

	_, err = FindItem(snap.Items, parentID)
	return err
}

func (s *FileSource) load() (Snapshot, error) {
	return ReadSnapshotFile(s.fs, s.path, s.format)
}

func (s *FileSource) save(snap Snapshot) error {
	return WriteSnapshotFile(s.fs, s.path, s.format, snap)
}

// ReadSnapshotFile parses one snapshot document from disk. An empty format is
// inferred from the file extension, defaulting to JSON.
func ReadSnapshotFile(fsys afero.Fs, path, format string) (Snapshot, error) {
	src, err := NewFileSource(fsys, path, format)
	if err != nil {
		return Snapshot{}, err
	}

	data, err := afero.ReadFile(fsys, src.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", src.path, err)
	}

	var snap Snapshot
	switch src.format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", src.path, err)
		}
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", src.path, err)
		}
	}
	return snap, nil
}

// WriteSnapshotFile encodes one snapshot document to disk, creating parent
// directories as needed.
func WriteSnapshotFile(fsys afero.Fs, path, format string, snap Snapshot) error {
	src, err := NewFileSource(fsys, path, format)
	if err != nil {
		return err
	}

	var data []byte
	switch src.format {
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	default:
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(src.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := afero.WriteFile(fsys, src.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", src.path, err)
	}
	return nil
}
