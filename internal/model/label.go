package model

import "strconv"

// Label is the integer category code of a sample
type Label int

const (
	LabelNeutral  Label = 0 // Neutral sentiment
	LabelPositive Label = 1 // Positive sentiment
	LabelNegative Label = 2 // Negative sentiment
)

// Labels lists the closed label domain in code order
var Labels = []Label{LabelNeutral, LabelPositive, LabelNegative}

// GradeLabels maps raw corpus grades to category codes.
// Grades outside this table are rejected or dropped by the normalizer, never passed through.
var GradeLabels = map[string]Label{
	"Good":    LabelPositive,
	"Neutral": LabelNeutral,
	"Bad":     LabelNegative,
}

func (l Label) String() string {
	switch l {
	case LabelNeutral:
		return "NEUTRAL"
	case LabelPositive:
		return "POSITIVE"
	case LabelNegative:
		return "NEGATIVE"
	default:
		return "UNKNOWN"
	}
}

// Code returns the stringified category code ("0", "1", "2")
func (l Label) Code() string {
	return strconv.Itoa(int(l))
}

// Valid reports whether the label belongs to the closed domain
func (l Label) Valid() bool {
	return l >= LabelNeutral && l <= LabelNegative
}

// ParseGrade maps a raw grade string to its category code
func ParseGrade(grade string) (Label, bool) {
	label, ok := GradeLabels[grade]
	return label, ok
}

// ParseCode parses a stringified category code
func ParseCode(code string) (Label, bool) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, false
	}
	label := Label(n)
	return label, label.Valid()
}

// HumanLabel maps a predicted category code to its display name
func HumanLabel(code string) (string, bool) {
	label, ok := ParseCode(code)
	if !ok {
		return "", false
	}
	return label.String(), true
}
