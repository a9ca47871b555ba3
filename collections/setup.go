package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the organizations, profiles,
// projects, project_sections, nrm_sections, nrm_rules, bq_items and
// dimension_rows collections exist.
func Setup(app *pocketbase.PocketBase) {
	organizations := ensureCollection(app, "organizations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "profiles", func(c *core.Collection) {
		if users, err := app.FindCollectionByNameOrId("users"); err == nil {
			c.Fields.Add(&core.RelationField{
				Name:          "user",
				Required:      true,
				CollectionId:  users.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			})
		}
		c.Fields.Add(&core.RelationField{
			Name:         "organization",
			Required:     true,
			CollectionId: organizations.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "full_name", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_admin"})
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "organization",
			Required:     true,
			CollectionId: organizations.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "active", "archived"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	projectSections := ensureCollection(app, "project_sections", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "color_hex", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "section_type",
			Required:  true,
			Values:    []string{"preliminary", "pre_work", "demolition", "main_work", "after_care"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	nrmSections := ensureCollection(app, "nrm_sections", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	nrmRules := ensureCollection(app, "nrm_rules", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "section",
			Required:      true,
			CollectionId:  nrmSections.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "path", Required: true})
		c.Fields.Add(&core.NumberField{Name: "level", Required: true})
		c.Fields.Add(&core.TextField{Name: "parent_path", Required: false})
		c.Fields.Add(&core.TextField{Name: "content", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.JSONField{Name: "coverage_rules"})
		c.Fields.Add(&core.TextField{Name: "examples", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	bqItems := ensureCollection(app, "bq_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "section",
			Required:     false,
			CollectionId: projectSections.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "nrm_rule",
			Required:     false,
			CollectionId: nrmRules.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "amount", Required: false})
		c.Fields.Add(&core.TextField{Name: "description_custom", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "dimension_rows", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "bq_item",
			Required:      true,
			CollectionId:  bqItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.NumberField{Name: "timesing", Required: false})
		c.Fields.Add(&core.NumberField{Name: "dim_a", Required: false})
		c.Fields.Add(&core.NumberField{Name: "dim_b", Required: false})
		c.Fields.Add(&core.NumberField{Name: "dim_c", Required: false})
		c.Fields.Add(&core.NumberField{Name: "waste", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_deduction"})
		c.Fields.Add(&core.NumberField{Name: "calculated_value", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
