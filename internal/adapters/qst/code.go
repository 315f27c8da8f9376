package qst

import (
	"fmt"
	"strconv"
)

// Civil status / earner type letters this tool can calculate. Official tables
// hold more (D secondary income, H single parents, ...) with different rules.
var civilStatus = map[byte]string{
	'A': "Single",
	'B': "Married Single-Earner",
	'C': "Married Dual-Earner",
}

var churchTax = map[byte]string{
	'N': "Church Tax: No",
	'Y': "Church Tax: Yes",
}

// annualModelCantons compute withholding tax cumulatively over the year.
var annualModelCantons = map[string]bool{
	"FR": true, "GE": true, "TI": true, "VD": true, "VS": true,
}

// HasAnnualModel reports whether canton uses the annual withholding tax model.
func HasAnnualModel(canton string) bool { return annualModelCantons[canton] }

// IsSupported reports whether the code's first letter is A, B or C. It never
// fails, whatever the rest of the code holds.
func IsSupported(code string) bool {
	if code == "" {
		return false
	}
	_, ok := civilStatus[code[0]]
	return ok
}

// Explain renders a 3-character tax class code for a human, e.g.
// "Married Single-Earner, Children: 2, Church Tax: No".
func Explain(code string) (string, error) {
	if len(code) != 3 {
		return "", fmt.Errorf("tax class code %q: want 3 characters", code)
	}
	status, ok := civilStatus[code[0]]
	if !ok {
		return "", fmt.Errorf("tax class code %q: unsupported civil status %q", code, code[0])
	}
	if code[1] < '0' || code[1] > '9' {
		return "", fmt.Errorf("tax class code %q: children must be a digit", code)
	}
	church, ok := churchTax[code[2]]
	if !ok {
		return "", fmt.Errorf("tax class code %q: church tax must be Y or N", code)
	}
	return fmt.Sprintf("%s, Children: %c, %s", status, code[1], church), nil
}

// BuildCode assembles a tax class code. Children are clamped into 0..9.
func BuildCode(married, singleEarner bool, children int, church bool) string {
	status := "A"
	if married {
		status = "C"
		if singleEarner {
			status = "B"
		}
	}
	children = min(max(children, 0), 9)
	flag := "N"
	if church {
		flag = "Y"
	}
	return status + strconv.Itoa(children) + flag
}
