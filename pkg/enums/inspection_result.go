package enums

import "fmt"

// InspectionResult is the outcome an admin records after inspecting a listing.
type InspectionResult string

const (
	InspectionResultPassed InspectionResult = "passed"
	InspectionResultFailed InspectionResult = "failed"
)

func (i InspectionResult) String() string {
	return string(i)
}

func (i InspectionResult) IsValid() bool {
	return i == InspectionResultPassed || i == InspectionResultFailed
}

// ParseInspectionResult converts raw input into an InspectionResult.
func ParseInspectionResult(value string) (InspectionResult, error) {
	switch InspectionResult(value) {
	case InspectionResultPassed:
		return InspectionResultPassed, nil
	case InspectionResultFailed:
		return InspectionResultFailed, nil
	default:
		return "", fmt.Errorf("invalid inspection result %q", value)
	}
}
