package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testBody = `EXECUTIVE SUMMARY
summary

ORGANIZATION BACKGROUND
background

STATEMENT OF NEED
need

PROJECT DESCRIPTION
project

BUDGET NARRATIVE
budget

COMMUNITY IMPACT
impact

SUSTAINABILITY PLAN
sustainability`

func TestRenderWrapsBody(t *testing.T) {
	out := Render("AFG", "FEMA", "Maple Grove VFD", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), testBody)

	assert.Contains(t, out, "GRANT APPLICATION DRAFT")
	assert.Contains(t, out, "Grant Program: AFG")
	assert.Contains(t, out, "Funding Source: FEMA")
	assert.Contains(t, out, "Applicant: Maple Grove VFD")
	assert.Contains(t, out, "Date Prepared: March 14, 2026")
	assert.Contains(t, out, "END OF DRAFT")
	assert.Contains(t, out, "AI-generated draft")

	// Headings appear in the fixed order.
	last := -1
	for _, heading := range SectionHeadings {
		idx := strings.Index(out, heading)
		assert.Greater(t, idx, last, "heading %s out of order", heading)
		last = idx
	}

	// Each recognized heading sits above a dashed rule.
	assert.Contains(t, out, "EXECUTIVE SUMMARY\n"+strings.Repeat("-", 80))
	assert.Contains(t, out, "SUSTAINABILITY PLAN\n"+strings.Repeat("-", 80))
}

func TestRenderDropsBodyRuleLines(t *testing.T) {
	body := "EXECUTIVE SUMMARY\n----------\nsummary"
	out := Render("AFG", "FEMA", "Maple Grove VFD", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), body)

	// The model's own rule is replaced by the canonical one, never doubled.
	assert.Contains(t, out, "EXECUTIVE SUMMARY\n"+strings.Repeat("-", 80)+"\nsummary")
	assert.NotContains(t, out, strings.Repeat("-", 80)+"\n"+strings.Repeat("-", 80))
	assert.NotContains(t, out, "----------\n")
}

func TestRenderIsStableAcrossReRendering(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	once := Render("AFG", "FEMA", "Maple Grove VFD", date, testBody)
	twice := Render("AFG", "FEMA", "Maple Grove VFD", date, once)

	// Wrapping an already-rendered document reproduces the body formatting:
	// every heading still carries exactly one rule.
	assert.Contains(t, twice, "EXECUTIVE SUMMARY\n"+strings.Repeat("-", 80)+"\nsummary")
}

func TestNormalizeEscapes(t *testing.T) {
	assert.Equal(t, "line one\nline two", NormalizeEscapes(`line one\nline two`))
	assert.Equal(t, "a\nb", NormalizeEscapes(`a\r\nb`))
	assert.Equal(t, "tab\there", NormalizeEscapes(`tab\there`))
	assert.Equal(t, `say "hi"`, NormalizeEscapes(`say \"hi\"`))
	assert.Equal(t, "plain text", NormalizeEscapes("plain text"))
}
