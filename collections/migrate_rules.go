package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"takeoff/services"
)

// MigrateRuleParentPaths backfills the parent_path field on measurement
// rules that were imported without one, deriving it from the path
// structure. It also logs rules whose declared level disagrees with
// their path depth, without blocking startup.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateRuleParentPaths(app *pocketbase.PocketBase) error {
	rulesCol, err := app.FindCollectionByNameOrId("nrm_rules")
	if err != nil {
		return fmt.Errorf("migrate: could not find nrm_rules collection: %w", err)
	}

	blank, err := app.FindRecordsByFilter(
		rulesCol,
		"parent_path = '' && level > 1",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query rules without parent_path: %w", err)
	}

	if len(blank) > 0 {
		log.Printf("migrate: found %d rule(s) without parent_path -- backfilling...\n", len(blank))

		for _, rule := range blank {
			path := rule.GetString("path")
			parent := services.ParentPathOf(path)
			if parent == "" {
				continue
			}

			rule.Set("parent_path", parent)
			if err := app.Save(rule); err != nil {
				log.Printf("migrate: failed to backfill parent_path for rule %q (%s): %v\n", path, rule.Id, err)
				continue
			}

			log.Printf("migrate: rule %q -> parent_path %q\n", path, parent)
		}
	}

	// Drift report: rules whose level does not match the path depth.
	all, err := app.FindRecordsByFilter(rulesCol, "id != ''", "path", 0, 0, nil)
	if err != nil {
		return fmt.Errorf("migrate: could not query rules for drift check: %w", err)
	}

	drifted := 0
	for _, rule := range all {
		path := rule.GetString("path")
		level := int(rule.GetFloat("level"))
		if depth := services.PathDepth(path); depth != level {
			log.Printf("migrate: rule %q declares level %d but has path depth %d\n", path, level, depth)
			drifted++
		}
	}
	if drifted > 0 {
		log.Printf("migrate: %d rule(s) with level/path-depth drift (left as-is).\n", drifted)
	}

	return nil
}
