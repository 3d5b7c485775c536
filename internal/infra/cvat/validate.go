package cvat

import (
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/jacoelho/xsd"
)

//go:embed schema.xsd
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schema     *xsd.Schema
	schemaErr  error
)

// validateStructure checks the document against the embedded CVAT
// structural schema: the root must be <annotations> containing only
// version, meta, track, image and tag elements.
func validateStructure(r io.Reader) error {
	schemaOnce.Do(func() {
		schema, schemaErr = xsd.Load(schemaFS, "schema.xsd")
	})
	if schemaErr != nil {
		return fmt.Errorf("load cvat schema: %w", schemaErr)
	}
	if err := schema.Validate(r); err != nil {
		return fmt.Errorf("document structure: %w", err)
	}
	return nil
}
