// Package catalog holds the immutable template hierarchy of improvement
// actions (Plan -> Group -> ActionDefinition). The catalog is embedded in the
// binary, validated against a JSON schema at load time and never mutated
// afterwards, so it is safe for unsynchronized concurrent reads.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed catalog.json
var catalogSource []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// ActionDefinition is one template action. Hint fields are advisory display
// fallbacks only; they are never copied into persisted data.
type ActionDefinition struct {
	ID              string  `json:"id"`
	PlanType        string  `json:"plan_type"`
	GroupName       *string `json:"group_name"`
	HintTitle       string  `json:"hint_title"`
	HintResponsible string  `json:"hint_responsible"`
	HintHow         string  `json:"hint_how"`
	HintResources   string  `json:"hint_resources"`
	OrderIndex      int     `json:"order_index"`
}

// Group is an ordered set of actions within a plan. Name is nil for the
// ungrouped bucket.
type Group struct {
	Name    *string
	Actions []ActionDefinition
}

// Plan is one improvement dimension with its ordered groups.
type Plan struct {
	Type   string
	Title  string
	Groups []Group
}

// Catalog exposes read-only views over the template hierarchy.
type Catalog struct {
	plans []Plan
	byID  map[string]ActionDefinition
}

type catalogFile struct {
	Plans []struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Groups []struct {
			Name    *string `json:"name"`
			Actions []struct {
				ID              string `json:"id"`
				HintTitle       string `json:"hint_title"`
				HintResponsible string `json:"hint_responsible"`
				HintHow         string `json:"hint_how"`
				HintResources   string `json:"hint_resources"`
				OrderIndex      int    `json:"order_index"`
			} `json:"actions"`
		} `json:"groups"`
	} `json:"plans"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog, loading it on first use. A load
// failure is sticky: every subsequent call reports the same error, and the
// caller is expected to treat it as fatal.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	return defaultCatalog, defaultErr
}

// Load parses and validates the embedded catalog source. It fails on schema
// violations, duplicate action ids and duplicate plan types; a partial catalog
// is never returned.
func Load() (*Catalog, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("failed to register catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	var document interface{}
	if err := json.Unmarshal(catalogSource, &document); err != nil {
		return nil, fmt.Errorf("catalog source is not valid JSON: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("catalog source failed schema validation: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(catalogSource, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog source: %w", err)
	}

	c := &Catalog{byID: map[string]ActionDefinition{}}
	seenPlans := map[string]struct{}{}

	for _, rawPlan := range file.Plans {
		if _, dup := seenPlans[rawPlan.Type]; dup {
			return nil, fmt.Errorf("duplicate plan type %q in catalog", rawPlan.Type)
		}
		seenPlans[rawPlan.Type] = struct{}{}

		plan := Plan{Type: rawPlan.Type, Title: rawPlan.Title}
		for _, rawGroup := range rawPlan.Groups {
			group := Group{Name: rawGroup.Name}
			for _, rawAction := range rawGroup.Actions {
				def := ActionDefinition{
					ID:              rawAction.ID,
					PlanType:        rawPlan.Type,
					GroupName:       rawGroup.Name,
					HintTitle:       rawAction.HintTitle,
					HintResponsible: rawAction.HintResponsible,
					HintHow:         rawAction.HintHow,
					HintResources:   rawAction.HintResources,
					OrderIndex:      rawAction.OrderIndex,
				}
				if _, dup := c.byID[def.ID]; dup {
					return nil, fmt.Errorf("duplicate action definition id %q in catalog", def.ID)
				}
				c.byID[def.ID] = def
				group.Actions = append(group.Actions, def)
			}
			sort.SliceStable(group.Actions, func(i, j int) bool {
				return group.Actions[i].OrderIndex < group.Actions[j].OrderIndex
			})
			plan.Groups = append(plan.Groups, group)
		}
		c.plans = append(c.plans, plan)
	}

	return c, nil
}

// Plans returns every plan in catalog order.
func (c *Catalog) Plans() []Plan {
	return c.plans
}

// ListForPlan returns the ordered groups of planType, or false when the plan
// type is unknown.
func (c *Catalog) ListForPlan(planType string) ([]Group, bool) {
	for _, plan := range c.plans {
		if plan.Type == planType {
			return plan.Groups, true
		}
	}
	return nil, false
}

// Definition looks up a template action by id.
func (c *Catalog) Definition(id string) (ActionDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// HasPlanType reports whether planType exists in the catalog.
func (c *Catalog) HasPlanType(planType string) bool {
	_, ok := c.ListForPlan(planType)
	return ok
}
