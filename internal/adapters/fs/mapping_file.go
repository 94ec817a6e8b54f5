package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// MappingFile implements ports.MappingRepository. The format follows the file
// extension: .toml and .json are decoded as such, anything else as YAML.
// An empty path serves the built-in default table.
type MappingFile struct {
	path string
}

// NewMappingFile creates a MappingFile for path.
func NewMappingFile(path string) *MappingFile {
	return &MappingFile{path: path}
}

// Path returns the file path, or "" for the built-in table.
func (f *MappingFile) Path() string {
	return f.path
}

// Load reads and decodes the mapping table.
func (f *MappingFile) Load(ctx context.Context) (domain.MappingTable, error) {
	if f.path == "" {
		return domain.DefaultMappingTable(), nil
	}
	if err := ctx.Err(); err != nil {
		return domain.MappingTable{}, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return domain.MappingTable{}, errors.Wrapf(err, "read mapping file %s", f.path)
	}

	var table domain.MappingTable
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".toml":
		err = toml.Unmarshal(data, &table)
	case ".json":
		err = json.Unmarshal(data, &table)
	default:
		err = yaml.Unmarshal(data, &table)
	}
	if err != nil {
		return domain.MappingTable{}, errors.Wrapf(err, "parse mapping file %s", f.path)
	}
	if len(table.Parts) == 0 {
		return domain.MappingTable{}, errors.Wrapf(domain.ErrInvalidConfig, "mapping file %s defines no parts", f.path)
	}
	return table, nil
}
