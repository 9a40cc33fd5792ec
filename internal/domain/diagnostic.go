package domain

import "fmt"

// Severity tags a diagnostic as a warning or an error.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticCode classifies translation diagnostics.
type DiagnosticCode string

const (
	DiagUnsupportedConstruct   DiagnosticCode = "UnsupportedConstruct"
	DiagUnresolvedInput        DiagnosticCode = "UnresolvedInput"
	DiagInconsistentResolution DiagnosticCode = "InconsistentResolution"
	DiagUntranslatedConstruct  DiagnosticCode = "UntranslatedConstruct"
	DiagCycleDetected          DiagnosticCode = "CycleDetected"
	DiagNameConflict           DiagnosticCode = "NameConflict"
	DiagOrphanSource           DiagnosticCode = "OrphanSource"
	DiagDuplicateInstance      DiagnosticCode = "DuplicateInstance"
)

// Diagnostic is one warning or error attached to the node (or column) that
// produced it. Translation of unrelated nodes continues.
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Code     DiagnosticCode `json:"code"`
	Node     string         `json:"node,omitempty"`
	Message  string         `json:"message"`
}

// Diagnostics collects diagnostics across the pipeline stages.
type Diagnostics []Diagnostic

// Warnf appends a warning for the given node.
func (d *Diagnostics) Warnf(code DiagnosticCode, node, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf appends an error for the given node.
func (d *Diagnostics) Errorf(code DiagnosticCode, node, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns the warning-severity subset.
func (d Diagnostics) Warnings() []Diagnostic {
	return d.filter(SeverityWarning)
}

// Errors returns the error-severity subset.
func (d Diagnostics) Errors() []Diagnostic {
	return d.filter(SeverityError)
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages returns the messages of the given severity, for report envelopes.
func (d Diagnostics) Messages(severity Severity) []string {
	msgs := []string{}
	for _, diag := range d {
		if diag.Severity != severity {
			continue
		}
		if diag.Node != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", diag.Node, diag.Message))
		} else {
			msgs = append(msgs, diag.Message)
		}
	}
	return msgs
}

func (d Diagnostics) filter(severity Severity) []Diagnostic {
	var out []Diagnostic
	for _, diag := range d {
		if diag.Severity == severity {
			out = append(out, diag)
		}
	}
	return out
}
