package csvarchive

import (
	"regexp"
	"strings"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// CurrencyMarker identifies the metadata line that names the quoted currency.
const CurrencyMarker = "EUR 1 ="

var (
	codePattern      = regexp.MustCompile(`EUR\s*1\s*=\s*([A-Z]{3})`)
	codeTokenPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	namePattern      = regexp.MustCompile(`EUR 1 =\s*\w+\s*\.\.\.\s*/\s*(.*)$`)
	trailingCommas   = regexp.MustCompile(`,+$`)
)

// ExtractCurrencyCode returns the quoted currency of a metadata line such as
// "Euro foreign exchange reference rate of the ECB / EUR 1 = USD ... / US dollar".
// Lines without CurrencyMarker never yield a code. When the marker is present
// but not followed by a code, the first standalone three-letter uppercase token wins.
func ExtractCurrencyCode(metadata string) (string, bool) {
	if strings.TrimSpace(metadata) == "" || !strings.Contains(metadata, CurrencyMarker) {
		return "", false
	}
	if m := codePattern.FindStringSubmatch(metadata); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	for _, token := range strings.Fields(metadata) {
		if codeTokenPattern.MatchString(token) {
			return token, true
		}
	}
	return "", false
}

// ExtractCurrencyName returns the description following "EUR 1 = XXX ... /",
// or the segment after the first "..." segment when that form is absent.
// It falls back to domain.UnknownCountry.
func ExtractCurrencyName(metadata string) string {
	if strings.TrimSpace(metadata) == "" {
		return domain.UnknownCountry
	}
	if m := namePattern.FindStringSubmatch(metadata); m != nil {
		return cleanDescription(m[1])
	}

	segments := strings.Split(metadata, "/")
	for i := 0; i < len(segments)-1; i++ {
		if strings.Contains(segments[i], "...") {
			return cleanDescription(segments[i+1])
		}
	}
	return domain.UnknownCountry
}

func cleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	desc = strings.TrimSpace(trailingCommas.ReplaceAllString(desc, ""))
	if before, _, found := strings.Cut(desc, "/"); found {
		desc = strings.TrimSpace(before)
	}
	return desc
}

// headerMetadata isolates the descriptive field of a raw header line: the
// second comma-separated field (or the whole line), unquoted, without trailing commas.
func headerMetadata(line string) string {
	parts := strings.Split(line, ",")
	metadata := line
	if len(parts) > 1 {
		metadata = parts[1]
	}
	metadata = strings.ReplaceAll(metadata, `"`, "")
	metadata = trailingCommas.ReplaceAllString(metadata, "")
	return strings.TrimSpace(metadata)
}
