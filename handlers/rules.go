package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

type ruleResponse struct {
	ID         string `json:"id"`
	Section    string `json:"section"`
	Path       string `json:"path"`
	Level      int    `json:"level"`
	ParentPath string `json:"parent_path"`
	Content    string `json:"content"`
	Unit       string `json:"unit"`
	ChildCount int    `json:"child_count"`
	MatchedBy  string `json:"matched_by,omitempty"`
}

type ruleListResponse struct {
	Rules     []ruleResponse `json:"rules"`
	Uncertain bool           `json:"uncertain,omitempty"`
}

// loadSectionRules reads every rule of an NRM section into resolver
// nodes, ordered by path.
func loadSectionRules(app *pocketbase.PocketBase, sectionID string) ([]services.RuleNode, error) {
	records, err := app.FindRecordsByFilter(
		"nrm_rules",
		"section = {:section}",
		"path",
		0,
		0,
		map[string]any{"section": sectionID},
	)
	if err != nil {
		return nil, err
	}

	nodes := make([]services.RuleNode, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, services.RuleNode{
			ID:         rec.Id,
			SectionID:  rec.GetString("section"),
			Path:       rec.GetString("path"),
			Level:      int(rec.GetFloat("level")),
			ParentPath: rec.GetString("parent_path"),
			Content:    rec.GetString("content"),
			Unit:       rec.GetString("unit"),
		})
	}
	return nodes, nil
}

func ruleToResponse(all []services.RuleNode, node services.RuleNode, matchedBy string) ruleResponse {
	return ruleResponse{
		ID:         node.ID,
		Section:    node.SectionID,
		Path:       node.Path,
		Level:      node.Level,
		ParentPath: node.ParentPath,
		Content:    node.Content,
		Unit:       node.Unit,
		ChildCount: services.CountChildren(all, node.Path, node.Level),
		MatchedBy:  matchedBy,
	}
}

// HandleListRules resolves rules for the taking-off picker. With a
// parentPath it runs the child resolver (tolerant of structural drift
// in imported data); without one it lists the requested level,
// defaulting to the top of the tree.
func HandleListRules(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectionID := e.Request.URL.Query().Get("sectionId")
		if sectionID == "" {
			return respondError(e, http.StatusBadRequest, "sectionId is required")
		}

		if _, err := app.FindRecordById("nrm_sections", sectionID); err != nil {
			log.Printf("list_rules: section not found %s: %v", sectionID, err)
			return respondError(e, http.StatusNotFound, "Section not found")
		}

		nodes, err := loadSectionRules(app, sectionID)
		if err != nil {
			log.Printf("list_rules: query failed for section %s: %v", sectionID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		parentPath := e.Request.URL.Query().Get("parentPath")
		if parentPath != "" {
			res := services.ResolveChildren(nodes, parentPath)
			out := make([]ruleResponse, 0, len(res.Children))
			for _, m := range res.Children {
				out = append(out, ruleToResponse(nodes, m.Node, m.Strategy.String()))
			}
			return e.JSON(http.StatusOK, ruleListResponse{Rules: out, Uncertain: res.Uncertain})
		}

		level := 1
		if raw := e.Request.URL.Query().Get("level"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > services.MaxRuleDepth {
				return respondError(e, http.StatusBadRequest, "level must be an integer between 1 and 4")
			}
			level = parsed
		}

		listed := services.ListAtLevel(nodes, level)
		out := make([]ruleResponse, 0, len(listed))
		for _, node := range listed {
			out = append(out, ruleToResponse(nodes, node, ""))
		}
		return e.JSON(http.StatusOK, ruleListResponse{Rules: out})
	}
}
