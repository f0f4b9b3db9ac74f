package enums

import "fmt"

// SubmissionStage names the step an order submission reached.
type SubmissionStage string

const (
	SubmissionStageRequest            SubmissionStage = "request"
	SubmissionStageCustomerResolution SubmissionStage = "customer_resolution"
	SubmissionStageVendorResolution   SubmissionStage = "vendor_resolution"
	SubmissionStageOrderRowCreated    SubmissionStage = "order_row_created"
	SubmissionStageItemResolution     SubmissionStage = "item_resolution"
	SubmissionStageLineInsert         SubmissionStage = "line_insert"
	SubmissionStageComplete           SubmissionStage = "complete"
)

var validSubmissionStages = []SubmissionStage{
	SubmissionStageRequest,
	SubmissionStageCustomerResolution,
	SubmissionStageVendorResolution,
	SubmissionStageOrderRowCreated,
	SubmissionStageItemResolution,
	SubmissionStageLineInsert,
	SubmissionStageComplete,
}

// String implements fmt.Stringer.
func (s SubmissionStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubmissionStage.
func (s SubmissionStage) IsValid() bool {
	for _, candidate := range validSubmissionStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubmissionStage converts raw input into a SubmissionStage.
func ParseSubmissionStage(value string) (SubmissionStage, error) {
	for _, candidate := range validSubmissionStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission stage %q", value)
}
