package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/snhsdiag/pkg/errors"
)

// Kind is a definition file syntax.
type Kind string

// Supported syntaxes.
const (
	KindTOML Kind = "toml"
	KindYAML Kind = "yaml"
)

// KindFromPath infers the syntax from the file extension.
func KindFromPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return KindTOML, nil
	case ".yaml", ".yml":
		return KindYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidPath, "cannot infer definition syntax from %q (use .toml, .yaml or .yml)", path)
}

// ParseKind parses a syntax name such as "toml" or "yml".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "toml":
		return KindTOML, nil
	case "yaml", "yml":
		return KindYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown definition syntax %q (must be toml or yaml)", s)
}

// Load reads and validates the definition file at path.
func Load(path string) (*File, error) {
	if err := errs.ValidateDefinitionPath(path); err != nil {
		return nil, err
	}
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "definition %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}
	f, err := Decode(bytes.NewReader(data), kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses a definition. Unknown keys are rejected.
func Decode(r io.Reader, kind Kind) (*File, error) {
	var f File
	switch kind {
	case KindTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errs.New(errs.ErrCodeInvalidDefinition, "unknown keys: %s", strings.Join(keys, ", "))
		}
	case KindYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "parse yaml")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown definition syntax %q", kind)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode writes f in the given syntax.
func (f *File) Encode(w io.Writer, kind Kind) error {
	switch kind {
	case KindTOML:
		return toml.NewEncoder(w).Encode(f)
	case KindYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return errs.New(errs.ErrCodeInvalidInput, "unknown definition syntax %q", kind)
}
