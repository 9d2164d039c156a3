package competency

import "fmt"

// ConversionError reports a catalog value that could not be parsed as
// a number. It is fatal to the aggregation call that hit it; values
// are never silently coerced to zero.
type ConversionError struct {
	OnetSocCode string
	ElementName string
	Value       string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("data conversion error: %q is not numeric (occupation %s, element %s)",
		e.Value, e.OnetSocCode, e.ElementName)
}
