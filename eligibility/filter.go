// Package eligibility classifies grant opportunities geographically and
// filters out grants a department cannot apply for. Classification is
// inferred from free text and URLs because lookup results carry no structured
// jurisdiction field; the URL is treated as a stronger signal than the
// display name since labels are inconsistent.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/civicgrant/grantflow/state"
)

// Class is the geographic classification of a grant.
type Class string

const (
	// ClassFederal marks grants from federal programs, available nationwide.
	ClassFederal Class = "federal"
	// ClassNationalFoundation marks grants from foundations serving all states.
	ClassNationalFoundation Class = "national-foundation"
	// ClassStateSpecific marks grants restricted to one or more states.
	ClassStateSpecific Class = "state-specific"
	// ClassUnknown marks grants with no detectable jurisdiction signal.
	// Unknown classifications default to inclusion.
	ClassUnknown Class = "unknown"
)

// Classify determines the geographic class of a grant from its name, source
// label, description and URL.
func Classify(g state.Grant) Class {
	if isFederal(g.Name, g.Source, g.Description) {
		return ClassFederal
	}
	if isNationalFoundation(g.Name, g.Source) {
		return ClassNationalFoundation
	}
	if len(DetectStates(g.Name, g.Source, g.URL)) > 0 {
		return ClassStateSpecific
	}

	return ClassUnknown
}

func isFederal(name, source, desc string) bool {
	text := strings.ToLower(fmt.Sprintf("%s %s %s", name, source, desc))
	for _, indicator := range federalIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}

	return false
}

func isNationalFoundation(name, source string) bool {
	text := strings.ToLower(name + " " + source)
	for _, foundation := range nationalFoundations {
		if strings.Contains(text, foundation) {
			return true
		}
	}

	return false
}

// DetectStates extracts state names mentioned in the grant name or source
// label, plus states implied by the URL (ohio.gov, .nc.gov, state.tx.us).
func DetectStates(name, source, url string) []string {
	text := strings.ToLower(name + " " + source)

	var found []string
	for _, st := range usStates {
		if strings.Contains(text, st) {
			found = append(found, st)
		}
	}

	if url != "" {
		urlLower := strings.ToLower(url)
		for stateName, abbrev := range stateAbbreviations {
			if strings.Contains(urlLower, stateName+".gov") ||
				strings.Contains(urlLower, "."+abbrev+".gov") ||
				strings.Contains(urlLower, "."+abbrev+".us") {
				if !contains(found, stateName) {
					found = append(found, stateName)
				}
			}
		}
	}

	return found
}

// FilterByState removes grants that are specific to states other than the
// department's. Federal and national-foundation grants always pass. When the
// URL implies a different state than the name does, the record is treated as
// bad data and dropped. Grants with no state signal at all are retained; a
// false positive is cheaper than silently hiding a legitimate opportunity.
func FilterByState(grants []state.Grant, departmentState string) []state.Grant {
	if strings.TrimSpace(departmentState) == "" {
		return grants
	}

	deptState := strings.ToLower(strings.TrimSpace(departmentState))
	filtered := make([]state.Grant, 0, len(grants))

	for _, g := range grants {
		switch Classify(g) {
		case ClassFederal, ClassNationalFoundation, ClassUnknown:
			filtered = append(filtered, g)
		case ClassStateSpecific:
			urlStates := DetectStates("", "", g.URL)
			nameStates := DetectStates(g.Name, g.Source, "")

			if len(urlStates) > 0 && len(nameStates) > 0 && !overlaps(urlStates, nameStates) {
				// URL contradicts the label; trust neither.
				continue
			}

			if contains(DetectStates(g.Name, g.Source, g.URL), deptState) {
				filtered = append(filtered, g)
			}
		}
	}

	return filtered
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}

func overlaps(a, b []string) bool {
	for _, s := range a {
		if contains(b, s) {
			return true
		}
	}

	return false
}
