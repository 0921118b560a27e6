package classifier

import (
	"strings"

	"github.com/Freeeeeet/smartcare/internal/model"
)

type keywordRule struct {
	keywords   []string
	department model.Department
}

// Checked in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{keywords: []string{"heart", "chest"}, department: model.DepartmentCardiology},
	{keywords: []string{"bone", "joint"}, department: model.DepartmentOrthopedics},
	{keywords: []string{"head", "dizzy"}, department: model.DepartmentNeurology},
}

// KeywordFallback maps symptoms to a department by case-insensitive substring
// match. It is total: anything unmatched goes to General Medicine.
func KeywordFallback(symptoms string) model.Department {
	text := strings.ToLower(symptoms)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.department
			}
		}
	}
	return model.DepartmentGeneralMedicine
}
