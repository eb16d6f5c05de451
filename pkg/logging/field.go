package logging

import "time"

// Keys shared by every verification log line, so that console and
// file output can be filtered by feature, variant or probe.
const (
	KeyFeature = "feature"
	KeyVariant = "variant"
	KeyProbe   = "probe"
	KeyError   = "error"
)

// FeatureField names the feature a log line is about.
func FeatureField(id string) Field { return Field{Key: KeyFeature, Value: id} }

// VariantField names the variant the resolver selected.
func VariantField(name string) Field { return Field{Key: KeyVariant, Value: name} }

// ProbeField names the probe program being run.
func ProbeField(name string) Field { return Field{Key: KeyProbe, Value: name} }

// LogField creates a Field with an arbitrary value.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// DurationField creates a Field with a duration value.
func DurationField(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// ErrorField records err under the "error" key, or "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: KeyError, Value: "<nil>"}
	}
	return Field{Key: KeyError, Value: err.Error()}
}
