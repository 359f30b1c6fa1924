// Package draft renders grant application drafts in the fixed plain-text
// layout the document panel expects and normalizes escape artifacts from
// serialized tool arguments.
package draft

import (
	"fmt"
	"strings"
	"time"
)

const rule = 80

// SectionHeadings is the fixed section order of a rendered draft. Render
// recognizes these headings in the narrative body and places the dashed rule
// under each.
var SectionHeadings = []string{
	"EXECUTIVE SUMMARY",
	"ORGANIZATION BACKGROUND",
	"STATEMENT OF NEED",
	"PROJECT DESCRIPTION",
	"BUDGET NARRATIVE",
	"COMMUNITY IMPACT",
	"SUSTAINABILITY PLAN",
}

// Render wraps a narrative body in the complete draft document: a ruled
// header block (program, funder, applicant, date), the body with a dashed
// rule under each recognized all-caps section heading, an end marker and the
// AI-review disclaimer. Rule lines already present in the body are dropped so
// re-rendering stays stable regardless of how the narrative was formatted.
func Render(grantName, fundingSource, applicant string, date time.Time, body string) string {
	heavy := strings.Repeat("=", rule)
	light := strings.Repeat("-", rule)

	parts := []string{
		heavy,
		"GRANT APPLICATION DRAFT",
		heavy,
		"",
		fmt.Sprintf("Grant Program: %s", grantName),
		fmt.Sprintf("Funding Source: %s", fundingSource),
		fmt.Sprintf("Applicant: %s", applicant),
		fmt.Sprintf("Date Prepared: %s", date.Format("January 2, 2006")),
		"",
		heavy,
		"",
	}

	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if isRuleLine(line) {
			continue
		}
		parts = append(parts, line)
		if isSectionHeading(line) {
			parts = append(parts, light)
		}
	}

	parts = append(parts,
		"",
		heavy,
		"END OF DRAFT",
		heavy,
		"",
		"Note: This is an AI-generated draft. Please review, edit, and customize",
		"before submission. Verify all facts, figures, and compliance with",
		"specific grant requirements.",
	)

	return strings.Join(parts, "\n")
}

// isSectionHeading reports whether the line is one of the fixed headings.
func isSectionHeading(line string) bool {
	t := strings.TrimSpace(line)
	for _, h := range SectionHeadings {
		if t == h {
			return true
		}
	}

	return false
}

// isRuleLine reports whether the line is a horizontal rule of dashes or
// equals signs.
func isRuleLine(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < 3 {
		return false
	}
	for _, r := range t {
		if r != '-' && r != '=' {
			return false
		}
	}

	return true
}

// NormalizeEscapes converts literal backslash escape sequences left over from
// JSON-serialized tool arguments into the characters they stand for. Model
// providers frequently double-escape multi-line string arguments; stored
// drafts must carry real line breaks or downstream rendering breaks.
func NormalizeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	replacer := strings.NewReplacer(
		`\r\n`, "\n",
		`\n`, "\n",
		`\t`, "\t",
		`\"`, `"`,
	)

	return replacer.Replace(s)
}
