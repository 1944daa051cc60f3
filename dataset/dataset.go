package dataset

import (
	"strings"

	"github.com/cartops/proctools/errors"
)

// validGeometryTypes are the recognized spatial geometry types. An empty
// geometry type marks a nonspatial dataset.
var validGeometryTypes = []string{"point", "multipoint", "polygon", "polyline"}

// Dataset describes a dataset: its fields, geometry type, and the paths it
// lives at, keyed by tag ("" for the untagged default path).
type Dataset struct {
	Fields []Field

	geometryType string
	paths        map[string]string
}

// NewDataset builds a dataset description. The geometry type must be one of
// point, multipoint, polygon, or polyline (case-insensitive), or empty for a
// nonspatial dataset. A non-empty path becomes the untagged default.
func NewDataset(fields []Field, geometryType, path string) (*Dataset, error) {
	normalized := strings.ToLower(geometryType)
	if normalized != "" && !containsString(validGeometryTypes, normalized) {
		return nil, errors.Newf("invalid geometry type %q", geometryType)
	}
	d := &Dataset{
		Fields:       fields,
		geometryType: normalized,
		paths:        make(map[string]string),
	}
	if path != "" {
		d.paths[""] = path
	}
	return d, nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// GeometryType returns the normalized geometry type, empty for nonspatial.
func (d *Dataset) GeometryType() string { return d.geometryType }

// Spatial reports whether the dataset carries geometry.
func (d *Dataset) Spatial() bool { return d.geometryType != "" }

// FieldNames returns the names of all fields, in declared order.
func (d *Dataset) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, field := range d.Fields {
		names[i] = field.Name
	}
	return names
}

// IDFields returns the fields marked as part of the feature identifier.
func (d *Dataset) IDFields() []Field {
	var fields []Field
	for _, field := range d.Fields {
		if field.IsID {
			fields = append(fields, field)
		}
	}
	return fields
}

// IDFieldNames returns the names of the identifier fields.
func (d *Dataset) IDFieldNames() []string {
	var names []string
	for _, field := range d.IDFields() {
		names = append(names, field.Name)
	}
	return names
}

// FieldsWithTag returns the fields carrying the given tag.
func (d *Dataset) FieldsWithTag(tag string) []Field {
	var fields []Field
	for _, field := range d.Fields {
		if field.HasTag(tag) {
			fields = append(fields, field)
		}
	}
	return fields
}

// TextFieldNames returns the names of string-typed fields.
func (d *Dataset) TextFieldNames() []string {
	var names []string
	for _, field := range d.Fields {
		switch strings.ToUpper(field.Type) {
		case "STRING", "TEXT":
			names = append(names, field.Name)
		}
	}
	return names
}

// AddPath registers a path for the given tag, replacing any previous path
// under that tag.
func (d *Dataset) AddPath(tag, path string) {
	d.paths[tag] = path
}

// Path returns the path registered under the given tag ("" for the
// default). Returns ErrNotFound for an unregistered tag.
func (d *Dataset) Path(tag string) (string, error) {
	path, ok := d.paths[tag]
	if !ok {
		return "", errors.NewNotFound("no dataset path for tag %q", tag)
	}
	return path, nil
}
