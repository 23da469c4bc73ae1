package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed snapshot.schema.json
var snapshotSchema []byte

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func snapshot() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(snapshotSchema))
	})
	return compiled, compileErr
}

// ValidateSnapshot checks a raw snapshot document against the embedded schema.
func ValidateSnapshot(document []byte) error {
	s, err := snapshot()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("snapshot validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
