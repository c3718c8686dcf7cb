package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGradeScale(t *testing.T) {
	assert.Equal(t, GradeScale{Min: 1, Max: 5, Passing: 3, IsQualitative: true}, GetGradeScale(LevelBasico1))
	assert.Equal(t, GradeScale{Min: 1, Max: 5, Passing: 3}, GetGradeScale(LevelBasico2))
	assert.Equal(t, GradeScale{Min: 1, Max: 5, Passing: 3}, GetGradeScale(LevelBasico3))
	assert.Equal(t, GradeScale{Min: 0, Max: 20, Passing: 10}, GetGradeScale(LevelSecundario))
}

func TestGetGradeScaleFallsBackToSecundario(t *testing.T) {
	for _, level := range []string{"", "superior", "SECUNDARIO", "basico_4_ciclo", "💥"} {
		assert.NotPanics(t, func() { GetGradeScale(EducationLevel(level)) })
		assert.Equal(t, GetGradeScale(LevelSecundario), GetGradeScale(EducationLevel(level)), level)
		assert.False(t, EducationLevel(level).Valid())
	}
}

func TestIsPassingGrade(t *testing.T) {
	assert.True(t, IsPassingGrade(10, LevelSecundario))
	assert.False(t, IsPassingGrade(9, LevelSecundario))
	assert.True(t, IsPassingGrade(3, LevelBasico3))
	assert.False(t, IsPassingGrade(2, LevelBasico2))
	assert.True(t, IsPassingGrade(10, "unknown"))
}

func TestIsNearBoundary(t *testing.T) {
	tests := []struct {
		raw   string
		level EducationLevel
		want  bool
	}{
		{"9.5", LevelSecundario, true},
		{"10.5", LevelSecundario, true},
		{"10", LevelSecundario, true},
		{"9.49", LevelSecundario, false},
		{"10.51", LevelSecundario, false},
		{"2.5", LevelBasico3, true},
		{"3.6", LevelBasico3, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw+"/"+string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, IsNearBoundary(dec(tt.raw), tt.level))
		})
	}
}
