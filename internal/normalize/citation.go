package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Citation patterns after pre-normalization. CFR titles are 1-2 digits,
// USC titles 1-3. Periods and the section symbol are optional on input;
// the canonical form always carries both.
var (
	cfrPattern = regexp.MustCompile(`^(\d{1,2})\s+C\.?F\.?R\.?\s*§?\s*(?:[Pp]arts?\s+)?([\dA-Za-z.()\-]+)$`)
	uscPattern = regexp.MustCompile(`^(\d{1,3})\s+U\.?S\.?C\.?\s*§?\s*(?:[Pp]arts?\s+)?([\dA-Za-z.()\-]+)$`)

	dashSpacing = regexp.MustCompile(`\s*-\s*`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// Citation canonicalizes a federal legal citation to the form
// "<title> C.F.R. § <section>" or "<title> U.S.C. § <section>".
//
// Transformations applied before matching:
//   - double section symbols (§§) collapse to a single §
//   - en/em dashes normalize to hyphens, with surrounding spaces removed
//   - "Part"/"Parts" designations are folded out of the section
//
// Strings that do not resolve to a C.F.R. or U.S.C. citation are
// rejected. Already-canonical input is returned unchanged.
func Citation(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty citation")
	}

	s = strings.ReplaceAll(s, "§§", "§")
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	s = dashSpacing.ReplaceAllString(s, "-")
	s = multiSpace.ReplaceAllString(s, " ")

	if m := cfrPattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s C.F.R. § %s", m[1], m[2]), nil
	}
	if m := uscPattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s U.S.C. § %s", m[1], m[2]), nil
	}
	return "", fmt.Errorf("not a recognizable C.F.R. or U.S.C. citation: %q", raw)
}
