package cssmod

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/yacobolo/cssmod/internal/modules"
)

// ManifestVersion is written into every manifest
const ManifestVersion = "1.0"

// Manifest maps source files, relative to the source directory, to their
// rename maps and utility tables. It marshals with files sorted by path.
type Manifest struct {
	Version string                                          `json:"version"`
	Files   *orderedmap.OrderedMap[string, *modules.Result] `json:"files"`
}

func newManifest(entries map[string]*modules.Result) *Manifest {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := orderedmap.New[string, *modules.Result]()
	for _, path := range paths {
		files.Set(path, entries[path])
	}
	return &Manifest{Version: ManifestVersion, Files: files}
}

// WriteManifest writes m as indented JSON
func WriteManifest(w io.Writer, m *Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

// ReadManifest decodes a manifest written by WriteManifest
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{Files: orderedmap.New[string, *modules.Result]()}
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %q", m.Version)
	}
	return m, nil
}
