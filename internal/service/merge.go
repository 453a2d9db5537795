package service

import (
	"time"

	"gorm.io/datatypes"

	"github.com/campoverde/plano-api/internal/catalog"
	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
)

// buildPlanTree produces the effective Plan -> Group -> Action tree for one
// organization. It is a pure function of the catalog, the override rows, the
// custom action rows and the reference day: calling it twice with the same
// inputs yields identical output.
//
// Ordering rules: plans and groups follow catalog order; template actions keep
// their catalog order inside each group; custom actions are appended at the
// end of their group in creation order (the rows arrive pre-sorted from the
// repository). Custom actions pointing at a group the catalog does not know
// are collected into trailing groups so they stay visible.
func buildPlanTree(cat *catalog.Catalog, overrides []models.ActionOverride, customs []models.CustomAction, today time.Time) []dto.PlanResponse {
	overrideByDef := make(map[string]models.ActionOverride, len(overrides))
	for _, override := range overrides {
		overrideByDef[override.ActionDefinitionID] = override
	}

	customsByGroup := map[string][]models.CustomAction{}
	groupOrderByPlan := map[string][]string{}
	groupNameByKey := map[string]*string{}
	for _, action := range customs {
		key := customGroupKey(action.PlanType, action.GroupName)
		if _, seen := customsByGroup[key]; !seen {
			groupOrderByPlan[action.PlanType] = append(groupOrderByPlan[action.PlanType], key)
			groupNameByKey[key] = action.GroupName
		}
		customsByGroup[key] = append(customsByGroup[key], action)
	}

	plans := make([]dto.PlanResponse, 0, len(cat.Plans()))
	for _, plan := range cat.Plans() {
		planResponse := dto.PlanResponse{Type: plan.Type, Title: plan.Title}

		for _, group := range plan.Groups {
			groupResponse := dto.GroupResponse{Name: group.Name, Actions: []dto.ActionResponse{}}

			for _, def := range group.Actions {
				var override *models.ActionOverride
				if row, ok := overrideByDef[def.ID]; ok {
					override = &row
				}
				groupResponse.Actions = append(groupResponse.Actions, effectiveTemplateAction(def, override, today))
			}

			key := customGroupKey(plan.Type, group.Name)
			for _, action := range customsByGroup[key] {
				groupResponse.Actions = append(groupResponse.Actions, effectiveCustomAction(action, today))
			}
			delete(customsByGroup, key)

			planResponse.Groups = append(planResponse.Groups, groupResponse)
		}

		// Custom actions in groups the catalog never declared.
		for _, key := range groupOrderByPlan[plan.Type] {
			actions, remaining := customsByGroup[key]
			if !remaining {
				continue
			}
			groupResponse := dto.GroupResponse{Name: groupNameByKey[key], Actions: []dto.ActionResponse{}}
			for _, action := range actions {
				groupResponse.Actions = append(groupResponse.Actions, effectiveCustomAction(action, today))
			}
			delete(customsByGroup, key)
			planResponse.Groups = append(planResponse.Groups, groupResponse)
		}

		plans = append(plans, planResponse)
	}

	return plans
}

func customGroupKey(planType string, groupName *string) string {
	if groupName == nil {
		return planType + "\x00"
	}
	return planType + "\x00" + *groupName
}

// effectiveTemplateAction resolves one template action against its override.
// Null override fields stay null: hints are display fallbacks and are never
// copied into the effective value.
func effectiveTemplateAction(def catalog.ActionDefinition, override *models.ActionOverride, today time.Time) dto.ActionResponse {
	response := dto.ActionResponse{
		Key:             models.TemplateActionKey(def.ID),
		Source:          models.ActionSourceTemplate,
		HintTitle:       def.HintTitle,
		HintResponsible: def.HintResponsible,
		HintHow:         def.HintHow,
		HintResources:   def.HintResources,
	}

	var start, end *time.Time
	if override != nil {
		response.Title = override.Title
		response.Responsible = override.Responsible
		response.HowItWillBeDone = override.HowItWillBeDone
		response.Resources = override.Resources
		response.Suppressed = override.Suppressed
		start = dateValue(override.StartDate)
		end = dateValue(override.EndDate)
		response.StartDate = formatDate(start)
		response.EndDate = formatDate(end)
	}

	response.Status = deriveStatus(response.Suppressed, start, end, today)
	return response
}

// effectiveCustomAction resolves one organization-created action. Custom
// actions carry no hints.
func effectiveCustomAction(action models.CustomAction, today time.Time) dto.ActionResponse {
	start := dateValue(action.StartDate)
	end := dateValue(action.EndDate)

	return dto.ActionResponse{
		Key:             models.CustomActionKey(action.ID),
		Source:          models.ActionSourceCustom,
		Title:           action.Title,
		Responsible:     action.Responsible,
		StartDate:       formatDate(start),
		EndDate:         formatDate(end),
		HowItWillBeDone: action.HowItWillBeDone,
		Resources:       action.Resources,
		Suppressed:      action.Suppressed,
		Status:          deriveStatus(action.Suppressed, start, end, today),
	}
}

func dateValue(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dto.DateLayout)
	return &formatted
}
