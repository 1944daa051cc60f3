// Package dataset carries dataset, field, and database description values
// used to parameterize processing procedures. The geospatial transform
// library consuming these descriptions lives outside this module.
package dataset

// Field describes one dataset field.
type Field struct {
	Name string
	// Type is the field type name, compared case-insensitively
	// ("String", "Long", "Date", ...).
	Type string
	// Length applies to string fields.
	Length int
	// Precision and Scale apply to float fields.
	Precision  int
	Scale      int
	IsNullable bool
	IsRequired bool
	// Alias is an optional display name.
	Alias string
	// IsID marks the field as part of the feature identifier.
	IsID bool
	// Tags select the field for tag-filtered operations.
	Tags []string
}

// HasTag reports whether the field carries the given tag.
func (f Field) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
