package jsonstore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every operation reads the file and every mutation rewrites it, so the file
// is the only authority. A mutex keeps one process's operations sequential.

// DefaultFileName is used when the configured path is a directory.
const DefaultFileName = "todos.json"

const fileMode = 0o644

const schemaURL = "todo://tasks.schema.json"

//go:embed tasks.schema.json
var schemaJSON string

var fileSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("jsonstore: add schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}()

// document is the on-disk layout. NextID is never lowered, so deleted ids
// are not handed out again.
type document struct {
	NextID int64        `json:"next_id"`
	Tasks  []model.Task `json:"tasks"`
}

// legacyItem is the bare-array format written by earlier versions.
type legacyItem struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Store is a store.Store over one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	log  *log.Logger
}

var _ store.Store = (*Store)(nil)

// Open checks that path is usable and that an existing file is valid.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, store.Unavailable("open", errors.New("empty path"))
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, store.Unavailable("open", fmt.Errorf("mkdir: %w", err))
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{path: path, log: logger.With("store", "json")}
	if _, err := s.load(); err != nil {
		return nil, store.Unavailable("open", err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return nil }

func (s *Store) ListAll(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, store.Unavailable("list", err)
	}
	return doc.Tasks, nil
}

func (s *Store) Create(ctx context.Context, title string) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Task{}, store.Unavailable("create", err)
	}
	t := model.Task{ID: doc.NextID, Title: title}
	doc.NextID++
	doc.Tasks = append(doc.Tasks, t)
	if err := s.save(doc); err != nil {
		return model.Task{}, store.Unavailable("create", err)
	}
	s.log.Debug("task created", "id", t.ID)
	return t, nil
}

func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return store.Unavailable("set completed", err)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].ID != id {
			continue
		}
		if doc.Tasks[i].Completed == completed {
			return nil
		}
		doc.Tasks[i].Completed = completed
		return store.Unavailable("set completed", s.save(doc))
	}
	s.log.Debug("set completed: no such task", "id", id)
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return store.Unavailable("delete", err)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
			return store.Unavailable("delete", s.save(doc))
		}
	}
	s.log.Debug("delete: no such task", "id", id)
	return nil
}

// load reads and validates the file. A missing file is an empty store.
func (s *Store) load() (document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{NextID: 1, Tasks: []model.Task{}}, nil
		}
		return document{}, fmt.Errorf("read file: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return document{NextID: 1, Tasks: []model.Task{}}, nil
	}
	if b[0] == '[' {
		return migrateLegacy(b)
	}
	return decode(b)
}

func decode(b []byte) (document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := fileSchema.Validate(raw); err != nil {
		return document{}, schemaError(err)
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	seen := make(map[int64]bool, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if seen[t.ID] {
			return document{}, fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = true
		if t.ID >= doc.NextID {
			doc.NextID = t.ID + 1
		}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	sort.Slice(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].ID < doc.Tasks[j].ID })
	return doc, nil
}

func migrateLegacy(b []byte) (document, error) {
	var items []legacyItem
	if err := json.Unmarshal(b, &items); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	doc := document{NextID: 1, Tasks: make([]model.Task, 0, len(items))}
	for _, it := range items {
		doc.Tasks = append(doc.Tasks, model.Task{ID: doc.NextID, Title: it.Title, Completed: it.Done})
		doc.NextID++
	}
	return doc, nil
}

// save writes doc to a temp file and renames it over the old one.
func (s *Store) save(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".todos-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("invalid task file: %w", err)
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("invalid task file at %s: %s", loc, leaf.Message)
}
