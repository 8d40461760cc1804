package geo

// NameProperty is the conventional property used as a display label.
const NameProperty = "name"

// Feature is one geometry with its identifier and pass-through properties.
type Feature struct {
	ID         string
	Geometry   Geometry
	Properties map[string]any
}

// Name returns the conventional "name" property when it is a non-empty string.
func (f *Feature) Name() (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	name, ok := f.Properties[NameProperty].(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
