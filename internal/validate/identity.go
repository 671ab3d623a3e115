package validate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/provdir/internal/model"
)

// diacriticStripper removes combining marks after NFD decomposition, so
// "José" and "Jose" compare equal.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Identity cross-checks the record's name against the registry entry for
// its NPI. The compare ignores case, whitespace, punctuation, and
// diacritics. A missing NPI or registry entry yields no finding.
func (v *Validator) Identity(rec model.ProviderRecord, ref *model.PartialRecord) []model.Finding {
	if rec.NPI == "" || ref == nil || ref.Name == "" || rec.Name == "" {
		return nil
	}

	if foldName(rec.Name) != foldName(ref.Name) {
		return []model.Finding{model.NewFinding("name", model.IssueNPINameMismatch)}
	}
	return nil
}

func foldName(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
