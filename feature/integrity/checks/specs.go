package checks

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpecExtensions lists the file extensions scanned for API documents.
var SpecExtensions = []string{".json", ".yaml", ".yml"}

// Spec describes an OpenAPI or Swagger document found in the bundle.
type Spec struct {
	// Service is the name used in the ?service= query parameter.
	Service string `json:"service"`
	// Path is the slash separated path inside the asset directory.
	Path string `json:"path"`
	// Kind is either "openapi" or "swagger".
	Kind string `json:"kind"`
	// Version is the specification version declared by the document.
	Version    string `json:"version"`
	Title      string `json:"title,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
}

// SpecError records a candidate file that could not be parsed, or a document
// whose service name collides with another one.
type SpecError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type specHeader struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
}

// DiscoverSpecs walks fsys and returns every API document it contains.
// JSON documents are parsed with the YAML decoder. Files without an
// "openapi" or "swagger" key are not API documents and are ignored.
// Documents sharing a service name are all returned, and each one after the
// first is also reported as a SpecError.
func DiscoverSpecs(fsys fs.FS) ([]Spec, []SpecError, error) {
	var specs []Spec
	var errs []SpecError

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSpecCandidate(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			errs = append(errs, SpecError{Path: p, Error: err.Error()})
			return nil
		}

		var header specHeader
		if err := yaml.Unmarshal(data, &header); err != nil {
			errs = append(errs, SpecError{Path: p, Error: err.Error()})
			return nil
		}

		spec := Spec{
			Service:    strings.TrimSuffix(path.Base(p), path.Ext(p)),
			Path:       p,
			Title:      header.Info.Title,
			APIVersion: header.Info.Version,
		}
		switch {
		case header.OpenAPI != "":
			spec.Kind, spec.Version = "openapi", header.OpenAPI
		case header.Swagger != "":
			spec.Kind, spec.Version = "swagger", header.Swagger
		default:
			return nil
		}
		specs = append(specs, spec)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan asset directory: %w", err)
	}

	errs = append(errs, duplicateServices(specs)...)
	return specs, errs, nil
}

// duplicateServices reports documents whose service name is already taken by
// an earlier document, since ?service= can only address one of them.
func duplicateServices(specs []Spec) []SpecError {
	var errs []SpecError
	first := make(map[string]string, len(specs))
	for _, spec := range specs {
		if prev, ok := first[spec.Service]; ok {
			errs = append(errs, SpecError{
				Path:  spec.Path,
				Error: fmt.Sprintf("service name %q is already used by %s", spec.Service, prev),
			})
			continue
		}
		first[spec.Service] = spec.Path
	}
	return errs
}

func isSpecCandidate(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, candidate := range SpecExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
