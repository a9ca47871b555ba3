package services

// UnitOptions is the list of NRM2 units of measurement offered when a
// selected rule carries no unit of its own.
var UnitOptions = []string{
	"m",
	"m2",
	"m3",
	"nr",
	"kg",
	"t",
	"item",
	"h",
	"wk",
	"sum",
}

// SectionTypes are the project-section categories, in the order a
// tender document presents them.
var SectionTypes = []string{
	"preliminary",
	"pre_work",
	"demolition",
	"main_work",
	"after_care",
}

// ValidSectionType reports whether t is a known section type.
func ValidSectionType(t string) bool {
	for _, s := range SectionTypes {
		if s == t {
			return true
		}
	}
	return false
}
