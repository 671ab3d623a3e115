package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provdir/internal/model"
)

func TestStateFromAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"full address", "123 Main St, Austin, TX 78701", "TX"},
		{"no zip", "500 Oak Ave, Denver, CO", "CO"},
		{"missing state", "123 Main St, Austin", unknownGroup},
		{"empty", "", unknownGroup},
		{"lowercase code ignored", "1 First St, Portland, or 97201", unknownGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateFromAddress(tt.addr))
		})
	}
}

func TestBuildTrendsGrouping(t *testing.T) {
	doc := &model.RunDocument{
		RunID: "run-9",
		Records: []model.ProviderRecord{
			{ID: "a", Address: "1 Congress Ave, Austin, TX 78701", Specialty: "Cardiology"},
			{ID: "b", Address: "2 Congress Ave, Austin, TX 78701", Specialty: "Cardiology"},
			{ID: "c", Address: "3 Sunset Blvd, Los Angeles, CA 90001", Specialty: "Dermatology"},
			{ID: "d", Address: "", Specialty: ""},
		},
		Results: []model.ValidationResult{
			{RecordID: "a", QualityScore: 90, Status: model.StatusExcellent},
			{RecordID: "b", QualityScore: 70, Status: model.StatusFair},
			{RecordID: "c", QualityScore: 10, Status: model.StatusCritical},
			{RecordID: "d", QualityScore: 55, Status: model.StatusPoor},
		},
	}

	trends := BuildTrends(doc)
	assert.Equal(t, "run-9", trends.RunID)

	require.Len(t, trends.ByState, 3)
	assert.Equal(t, []string{"CA", "TX", unknownGroup}, []string{
		trends.ByState[0].Key, trends.ByState[1].Key, trends.ByState[2].Key,
	})

	ca := trends.ByState[0]
	assert.Equal(t, 1, ca.Providers)
	assert.Equal(t, 10.0, ca.AverageScore)
	assert.Equal(t, 1, ca.CriticalCount)
	assert.Equal(t, 1.0, ca.CriticalRatio)
	assert.Equal(t, RiskHigh, ca.RiskLevel)

	tx := trends.ByState[1]
	assert.Equal(t, 2, tx.Providers)
	assert.Equal(t, 80.0, tx.AverageScore)
	assert.Equal(t, 0, tx.CriticalCount)
	assert.Equal(t, RiskLow, tx.RiskLevel)

	require.Len(t, trends.BySpecialty, 3)
	assert.Equal(t, "Cardiology", trends.BySpecialty[0].Key)
	assert.Equal(t, "Dermatology", trends.BySpecialty[1].Key)
	assert.Equal(t, unknownGroup, trends.BySpecialty[2].Key)
}

func TestRiskLevelThresholds(t *testing.T) {
	tests := []struct {
		name  string
		avg   float64
		ratio float64
		want  string
	}{
		{"healthy", 85, 0, RiskLow},
		{"avg below medium line", 59.9, 0, RiskMedium},
		{"ratio above medium line", 85, 0.16, RiskMedium},
		{"avg below high line", 39.9, 0, RiskHigh},
		{"ratio above high line", 85, 0.31, RiskHigh},
		{"boundary avg 60 is low", 60, 0, RiskLow},
		{"boundary ratio 0.15 is low", 85, 0.15, RiskLow},
		{"boundary ratio 0.30 is medium", 50, 0.30, RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskLevel(tt.avg, tt.ratio))
		})
	}
}

func TestBuildTrendsSkipsRecordsWithoutResults(t *testing.T) {
	doc := &model.RunDocument{
		Records: []model.ProviderRecord{
			{ID: "a", Address: "1 Congress Ave, Austin, TX 78701", Specialty: "Cardiology"},
			{ID: "orphan", Address: "9 Elm St, Miami, FL 33101", Specialty: "Oncology"},
		},
		Results: []model.ValidationResult{
			{RecordID: "a", QualityScore: 90, Status: model.StatusExcellent},
		},
	}

	trends := BuildTrends(doc)
	require.Len(t, trends.ByState, 1)
	assert.Equal(t, "TX", trends.ByState[0].Key)
}
