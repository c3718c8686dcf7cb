package grades

import "github.com/shopspring/decimal"

// EducationLevel identifies a Portuguese education cycle.
type EducationLevel string

const (
	LevelBasico1    EducationLevel = "basico_1_ciclo"
	LevelBasico2    EducationLevel = "basico_2_ciclo"
	LevelBasico3    EducationLevel = "basico_3_ciclo"
	LevelSecundario EducationLevel = "secundario"
)

// GradeScale describes the grading range of an education level.
type GradeScale struct {
	Min           int  `json:"min"`
	Max           int  `json:"max"`
	Passing       int  `json:"passing"`
	IsQualitative bool `json:"is_qualitative"`
}

var gradeScales = map[EducationLevel]GradeScale{
	LevelBasico1:    {Min: 1, Max: 5, Passing: 3, IsQualitative: true},
	LevelBasico2:    {Min: 1, Max: 5, Passing: 3},
	LevelBasico3:    {Min: 1, Max: 5, Passing: 3},
	LevelSecundario: {Min: 0, Max: 20, Passing: 10},
}

// GetGradeScale returns the scale for level. Unknown levels use the
// Secundário 0-20 scale.
func GetGradeScale(level EducationLevel) GradeScale {
	if scale, ok := gradeScales[level]; ok {
		return scale
	}
	return gradeScales[LevelSecundario]
}

// IsPassingGrade reports whether grade reaches the passing mark of level.
func IsPassingGrade(grade int, level EducationLevel) bool {
	return grade >= GetGradeScale(level).Passing
}

// IsNearBoundary reports whether an unrounded grade lies within half a point
// of the passing mark, where rounding decides pass or fail.
func IsNearBoundary(rawGrade decimal.Decimal, level EducationLevel) bool {
	passing := decimal.NewFromInt(int64(GetGradeScale(level).Passing))
	return rawGrade.Sub(passing).Abs().LessThanOrEqual(half)
}

// Valid reports whether level is one of the known education levels.
func (l EducationLevel) Valid() bool {
	_, ok := gradeScales[l]
	return ok
}
