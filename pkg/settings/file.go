package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// File persists snapshots. The format follows the file extension (yaml,
// json, toml).
type File struct {
	path string
}

// NewFile returns a File at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields an empty snapshot so that
// every component falls back to its defaults.
func (f *File) Load() (Snapshot, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("settings: reading %s: %w", f.path, err)
	}
	snap := Snapshot{}
	for _, key := range v.AllKeys() {
		snap.Set(key, v.Get(key))
	}
	return snap, nil
}

// Save writes snap, replacing the file.
func (f *File) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	v := viper.New()
	for _, path := range snap.Paths() {
		for key, value := range snap[path] {
			v.Set(JoinKey(path, key), value)
		}
	}
	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("settings: writing %s: %w", f.path, err)
	}
	return nil
}

// EncodeTOML renders snap as a nested TOML document.
func EncodeTOML(snap Snapshot) ([]byte, error) {
	return toml.Marshal(nest(snap))
}

func nest(snap Snapshot) map[string]any {
	root := map[string]any{}
	for _, path := range snap.Paths() {
		node := root
		if path != "" {
			for _, seg := range strings.Split(path, ".") {
				child, ok := node[seg].(map[string]any)
				if !ok {
					child = map[string]any{}
					node[seg] = child
				}
				node = child
			}
		}
		for key, value := range snap[path] {
			node[key] = value
		}
	}
	return root
}
