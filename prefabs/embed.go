package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// MachinesFS holds the built-in machine definitions and their scripts.
//
//go:embed machines/*.yaml machines/*.tengo
var MachinesFS embed.FS

// Load reads a definition or script file. A copy under dir, when dir is set
// and the file exists there, overrides the embedded one.
func Load(dir, name string) ([]byte, error) {
	clean := cleanPath(name)
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	return MachinesFS.ReadFile(path.Join("machines", clean))
}

// ModTime reports when the disk copy of name last changed.
func ModTime(dir, name string) (time.Time, bool) {
	if dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(cleanPath(name))))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the machine names available from the embedded set and dir.
func List(dir string) ([]string, error) {
	var names []string
	embedded, err := fs.Glob(MachinesFS, "machines/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, p := range embedded {
		names = append(names, MachineName(p))
	}
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isSpecFile(e.Name()) {
				names = append(names, MachineName(e.Name()))
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// MachineName maps a file path to the machine it defines.
func MachineName(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}

func cleanPath(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "prefabs/")
	s = strings.TrimPrefix(s, "machines/")
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
