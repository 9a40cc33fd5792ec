package script

import (
	"fmt"
	"time"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Report summarizes the outcome of translating one mapping.
type Report struct {
	MappingName string           `json:"mapping_name"`
	GeneratedAt string           `json:"generated_at"`
	Statistics  ReportStatistics `json:"statistics"`
	Components  ReportComponents `json:"components"`
	Warnings    []string         `json:"warnings"`
	Errors      []string         `json:"errors"`
	Details     ReportDetails    `json:"details"`
}

type ReportStatistics struct {
	TotalTransformations int     `json:"total_transformations"`
	Migrated             int     `json:"migrated"`
	Warnings             int     `json:"warnings"`
	Errors               int     `json:"errors"`
	SuccessRate          float64 `json:"success_rate"`
}

type ReportComponents struct {
	Sources         int `json:"sources"`
	Transformations int `json:"transformations"`
	Sinks           int `json:"sinks"`
	ScriptLines     int `json:"script_lines"`
}

type ReportDetails struct {
	TransformationsMigrated []string `json:"transformations_migrated"`
	Recommendations         []string `json:"recommendations"`
}

// BuildReport computes the statistics for a translated flow. Migrated counts
// every node that made it into the dataflow; success rate is migrated over
// total, 100 when the mapping had no transformations at all.
func BuildReport(flow *Flow, doc *DataflowDocument, diags domain.Diagnostics) *Report {
	migrated := make([]string, 0, len(doc.Properties.TypeProperties.Transformations))
	for _, tr := range doc.Properties.TypeProperties.Transformations {
		migrated = append(migrated, fmt.Sprintf("%s (%s)", tr.Name, tr.Type))
	}

	total := len(flow.Nodes)
	rate := 100.0
	if total > 0 {
		rate = float64(len(migrated)) / float64(total) * 100
	}

	warnings := diags.Messages(domain.SeverityWarning)
	errors := diags.Messages(domain.SeverityError)

	return &Report{
		MappingName: flow.Name,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Statistics: ReportStatistics{
			TotalTransformations: total,
			Migrated:             len(migrated),
			Warnings:             len(warnings),
			Errors:               len(errors),
			SuccessRate:          rate,
		},
		Components: ReportComponents{
			Sources:         len(doc.Properties.TypeProperties.Sources),
			Transformations: len(doc.Properties.TypeProperties.Transformations),
			Sinks:           len(doc.Properties.TypeProperties.Sinks),
			ScriptLines:     len(doc.Properties.TypeProperties.ScriptLines),
		},
		Warnings: warnings,
		Errors:   errors,
		Details: ReportDetails{
			TransformationsMigrated: migrated,
			Recommendations:         recommendations(diags),
		},
	}
}

func recommendations(diags domain.Diagnostics) []string {
	recs := []string{
		"Review the generated script lines in the Data Factory UI before publishing.",
		"Validate dataset references against the target environment.",
	}
	for _, d := range diags {
		switch d.Code {
		case domain.DiagUntranslatedConstruct:
			recs = append(recs,
				"One or more expressions could not be fully translated; rewrite them manually in the data flow.")
		case domain.DiagUnresolvedInput:
			recs = append(recs,
				"A join is missing an input stream; reconnect it in the data flow designer.")
		}
	}
	return dedupeStrings(recs)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
