package models

import "strings"

// Grade is the final grade a reviewer reports for the course
type Grade string

const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
	GradeAudit  Grade = "Audit"
)

// Grades lists every accepted grade in display order
var Grades = []Grade{
	GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC, GradeCMinus, GradeD, GradeF, GradeAudit,
}

// Valid reports whether g is one of Grades
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// GradeNames joins the accepted grades for error messages
func GradeNames() string {
	names := make([]string, len(Grades))
	for i, g := range Grades {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

// DefaultProfessorTitle is assigned to imported professors
const DefaultProfessorTitle = "Professor"
