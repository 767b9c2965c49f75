package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hnrobert/lumdash/internal/datafs"
)

const defaultTitle = "lumdash"

// Settings are the site-wide values an operator edits on disk.
type Settings struct {
	UpdatedAt time.Time `yaml:"updated_at"`
	Title     string    `yaml:"title"`
	// FooterNotice is markdown shown in every dashboard footer.
	FooterNotice string `yaml:"footer_notice,omitempty"`
}

var ErrEmptyTitle = errors.New("title must not be empty")

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return s.saveLocked(Settings{UpdatedAt: time.Now().UTC(), Title: defaultTitle})
	}
	return nil
}

func (s *Store) Get() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked()
}

func (s *Store) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.getLocked()
	if err != nil {
		return err
	}
	st.Title = title
	st.UpdatedAt = time.Now().UTC()
	return s.saveLocked(st)
}

// SetFooterNotice stores the markdown shown in the dashboard footer.
func (s *Store) SetFooterNotice(md string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.getLocked()
	if err != nil {
		return err
	}
	st.FooterNotice = md
	st.UpdatedAt = time.Now().UTC()
	return s.saveLocked(st)
}

func (s *Store) getLocked() (Settings, error) {
	b, err := datafs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{Title: defaultTitle}, nil
		}
		return Settings{}, err
	}
	var st Settings
	if err := yaml.Unmarshal(b, &st); err != nil {
		return Settings{}, err
	}
	if st.Title == "" {
		st.Title = defaultTitle
	}
	return st, nil
}

func (s *Store) saveLocked(st Settings) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return datafs.WriteFileAtomic(s.path, b, 0o644)
}
