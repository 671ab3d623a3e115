package report

import (
	"sort"
	"strings"

	"github.com/sells-group/provdir/internal/model"
)

// Risk levels assigned to trend groups.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// unknownGroup collects records whose grouping key could not be derived.
const unknownGroup = "unknown"

// TrendGroup aggregates one grouping key's outcomes.
type TrendGroup struct {
	Key           string  `json:"key"`
	Providers     int     `json:"providers"`
	AverageScore  float64 `json:"average_quality_score"`
	CriticalCount int     `json:"critical_count"`
	CriticalRatio float64 `json:"critical_ratio"`
	RiskLevel     string  `json:"risk_level"`
}

// Trends breaks a run down by provider state and specialty.
type Trends struct {
	RunID       string       `json:"run_id"`
	ByState     []TrendGroup `json:"by_state"`
	BySpecialty []TrendGroup `json:"by_specialty"`
}

// BuildTrends aggregates a run document by state (parsed from addresses)
// and specialty. Groups come back ordered by key ascending.
func BuildTrends(doc *model.RunDocument) Trends {
	resultByID := make(map[string]*model.ValidationResult, len(doc.Results))
	for i := range doc.Results {
		resultByID[doc.Results[i].RecordID] = &doc.Results[i]
	}

	byState := make(map[string]*trendAcc)
	bySpecialty := make(map[string]*trendAcc)
	for i := range doc.Records {
		rec := &doc.Records[i]
		res := resultByID[rec.ID]
		if res == nil {
			continue
		}
		accumulate(byState, stateFromAddress(rec.Address), res)
		accumulate(bySpecialty, specialtyKey(rec.Specialty), res)
	}

	return Trends{
		RunID:       doc.RunID,
		ByState:     flattenGroups(byState),
		BySpecialty: flattenGroups(bySpecialty),
	}
}

type trendAcc struct {
	providers int
	scoreSum  int
	critical  int
}

func accumulate(groups map[string]*trendAcc, key string, res *model.ValidationResult) {
	acc := groups[key]
	if acc == nil {
		acc = &trendAcc{}
		groups[key] = acc
	}
	acc.providers++
	acc.scoreSum += res.QualityScore
	if res.Status == model.StatusCritical {
		acc.critical++
	}
}

func flattenGroups(groups map[string]*trendAcc) []TrendGroup {
	out := make([]TrendGroup, 0, len(groups))
	for key, acc := range groups {
		avg := float64(acc.scoreSum) / float64(acc.providers)
		ratio := float64(acc.critical) / float64(acc.providers)
		out = append(out, TrendGroup{
			Key:           key,
			Providers:     acc.providers,
			AverageScore:  round2(avg),
			CriticalCount: acc.critical,
			CriticalRatio: round2(ratio),
			RiskLevel:     riskLevel(avg, ratio),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// riskLevel grades a group from its raw (unrounded) aggregates.
func riskLevel(avg, criticalRatio float64) string {
	switch {
	case avg < 40 || criticalRatio > 0.30:
		return RiskHigh
	case avg < 60 || criticalRatio > 0.15:
		return RiskMedium
	default:
		return RiskLow
	}
}

// stateFromAddress pulls the two-letter state code out of a free-form US
// address ("123 Main St, Austin, TX 78701"). Unparseable shapes group
// under unknown.
func stateFromAddress(addr string) string {
	parts := strings.Split(addr, ",")
	last := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
	if len(last) > 0 && isStateCode(last[0]) {
		return last[0]
	}
	return unknownGroup
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func specialtyKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownGroup
	}
	return s
}
