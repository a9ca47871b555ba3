package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

type seedSection struct {
	code  string
	title string
}

// NRM2 work section headings used to seed an empty library.
var nrm2Sections = []seedSection{
	{"1", "Preliminaries"},
	{"2", "Off-site manufactured materials, components and buildings"},
	{"3", "Demolitions"},
	{"4", "Alterations, repairs and conservation"},
	{"5", "Excavating and filling"},
	{"6", "Ground remediation and soil stabilisation"},
	{"7", "Piling"},
	{"8", "Underpinning"},
	{"9", "Diaphragm walls and embedded retaining walls"},
	{"10", "Crib walls, gabions and reinforced earth"},
	{"11", "In-situ concrete works"},
	{"12", "Precast/composite concrete"},
	{"13", "Precast concrete"},
	{"14", "Masonry"},
	{"15", "Structural metalwork"},
	{"16", "Carpentry"},
	{"17", "Sheet roof coverings"},
	{"18", "Tile and slate roof and wall coverings"},
	{"19", "Waterproofing"},
	{"20", "Proprietary linings and partitions"},
	{"21", "Cladding and covering"},
	{"22", "General joinery"},
	{"23", "Windows, screens and lights"},
	{"24", "Doors, shutters and hatches"},
	{"25", "Stairs, walkways and balustrades"},
	{"26", "Metalwork"},
	{"27", "Glazing"},
	{"28", "Floor, wall, ceiling and roof finishings"},
	{"29", "Decoration"},
	{"30", "Suspended ceilings"},
	{"31", "Insulation, fire stopping and fire protection"},
	{"32", "Furniture, fittings and equipment"},
	{"33", "Drainage above ground"},
	{"34", "Drainage below ground"},
	{"35", "Site works"},
	{"36", "Fencing"},
	{"37", "Soft landscaping"},
	{"38", "Mechanical services"},
	{"39", "Electrical services"},
	{"40", "Transportation"},
	{"41", "Builder's work in connection with services"},
}

type seedRule struct {
	path    string
	level   int
	content string
	unit    string
}

// Starter measurement tree for the excavating-and-filling section.
var excavatingRules = []seedRule{
	{"1", 1, "Site preparation", ""},
	{"1.1", 2, "Removing trees", "nr"},
	{"1.2", 2, "Removing tree stumps", "nr"},
	{"2", 1, "Excavating", ""},
	{"2.1", 2, "Bulk excavation", "m3"},
	{"2.1.1", 3, "Not exceeding 2m deep", "m3"},
	{"2.1.2", 3, "Not exceeding 4m deep", "m3"},
	{"2.2", 2, "Foundation excavation", "m3"},
	{"2.2.1", 3, "Not exceeding 2m deep", "m3"},
	{"3", 1, "Disposal", ""},
	{"3.1", 2, "Excavated material off site", "m3"},
	{"3.2", 2, "Excavated material on site", "m3"},
	{"4", 1, "Filling", ""},
	{"4.1", 2, "Imported filling", "m3"},
	{"4.2", 2, "Obtained from excavated material", "m3"},
}

// Seed populates an empty store with the NRM2 section list, a starter
// rule tree and a demo organization. Safe to call on every startup --
// skips anything that already exists.
func Seed(app *pocketbase.PocketBase) error {
	if err := seedOrganization(app); err != nil {
		return err
	}
	if err := seedNRMSections(app); err != nil {
		return err
	}
	return seedRuleTree(app)
}

func seedOrganization(app *pocketbase.PocketBase) error {
	orgsCol, err := app.FindCollectionByNameOrId("organizations")
	if err != nil {
		return fmt.Errorf("seed: could not find organizations collection: %w", err)
	}

	existing, err := app.FindRecordsByFilter(orgsCol, "id != ''", "", 1, 0, nil)
	if err != nil {
		return fmt.Errorf("seed: could not query organizations: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	org := core.NewRecord(orgsCol)
	org.Set("name", "Demo Surveying Ltd")
	if err := app.Save(org); err != nil {
		return fmt.Errorf("seed: could not create demo organization: %w", err)
	}

	log.Printf("seed: created demo organization (%s)\n", org.Id)
	return nil
}

func seedNRMSections(app *pocketbase.PocketBase) error {
	sectionsCol, err := app.FindCollectionByNameOrId("nrm_sections")
	if err != nil {
		return fmt.Errorf("seed: could not find nrm_sections collection: %w", err)
	}

	existing, err := app.FindRecordsByFilter(sectionsCol, "id != ''", "", 1, 0, nil)
	if err != nil {
		return fmt.Errorf("seed: could not query nrm_sections: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for i, s := range nrm2Sections {
		rec := core.NewRecord(sectionsCol)
		rec.Set("code", s.code)
		rec.Set("title", s.title)
		rec.Set("sort_order", i+1)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: could not create nrm section %q: %w", s.code, err)
		}
	}

	log.Printf("seed: created %d NRM work sections\n", len(nrm2Sections))
	return nil
}

func seedRuleTree(app *pocketbase.PocketBase) error {
	rulesCol, err := app.FindCollectionByNameOrId("nrm_rules")
	if err != nil {
		return fmt.Errorf("seed: could not find nrm_rules collection: %w", err)
	}

	existing, err := app.FindRecordsByFilter(rulesCol, "id != ''", "", 1, 0, nil)
	if err != nil {
		return fmt.Errorf("seed: could not query nrm_rules: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	sectionsCol, err := app.FindCollectionByNameOrId("nrm_sections")
	if err != nil {
		return fmt.Errorf("seed: could not find nrm_sections collection: %w", err)
	}
	sections, err := app.FindRecordsByFilter(sectionsCol, "code = '5'", "", 1, 0, nil)
	if err != nil || len(sections) == 0 {
		return fmt.Errorf("seed: could not find excavating section: %w", err)
	}
	section := sections[0]

	for _, r := range excavatingRules {
		rec := core.NewRecord(rulesCol)
		rec.Set("section", section.Id)
		rec.Set("path", r.path)
		rec.Set("level", r.level)
		rec.Set("parent_path", services.ParentPathOf(r.path))
		rec.Set("content", r.content)
		rec.Set("unit", r.unit)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: could not create rule %q: %w", r.path, err)
		}
	}

	log.Printf("seed: created %d starter rules under section 5\n", len(excavatingRules))
	return nil
}
