package model

// Severity classifies how badly a finding damages record quality.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// IssueCode identifies one kind of detected data problem. The set is fixed;
// downstream consumers key remediation templates off these values.
type IssueCode string

const (
	IssueInvalidPhoneFormat IssueCode = "invalid_phone_format"
	IssuePlaceholderPhone   IssueCode = "placeholder_phone"
	IssueOutdatedAddress    IssueCode = "outdated_address"
	IssueIncompleteAddress  IssueCode = "incomplete_address"
	IssueLicenseExpired     IssueCode = "license_expired"
	IssueLicenseUnknown     IssueCode = "license_unknown"
	IssueNPINameMismatch    IssueCode = "npi_name_mismatch"
	IssueStaleData          IssueCode = "stale_data"
	IssueFieldUnparseable   IssueCode = "field_unparseable"
	IssueProcessingError    IssueCode = "processing_error"
)

// issueSeverities is the fixed severity taxonomy. Codes not listed default
// to warning.
var issueSeverities = map[IssueCode]Severity{
	IssueInvalidPhoneFormat: SeverityWarning,
	IssuePlaceholderPhone:   SeverityWarning,
	IssueOutdatedAddress:    SeverityWarning,
	IssueIncompleteAddress:  SeverityWarning,
	IssueLicenseExpired:     SeverityWarning,
	IssueLicenseUnknown:     SeverityWarning,
	IssueNPINameMismatch:    SeverityCritical,
	IssueStaleData:          SeverityWarning,
	IssueFieldUnparseable:   SeverityWarning,
	IssueProcessingError:    SeverityCritical,
}

// SeverityOf returns the taxonomy severity for an issue code.
func SeverityOf(code IssueCode) Severity {
	if s, ok := issueSeverities[code]; ok {
		return s
	}
	return SeverityWarning
}

// Finding is a single detected problem with one field of a provider record.
// Immutable once created.
type Finding struct {
	Field     string    `json:"field"`
	IssueCode IssueCode `json:"issue_code"`
	Severity  Severity  `json:"severity"`
}

// NewFinding builds a finding with the taxonomy severity for the code.
func NewFinding(field string, code IssueCode) Finding {
	return Finding{Field: field, IssueCode: code, Severity: SeverityOf(code)}
}

// HasCritical reports whether any finding in the list is critical.
func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
