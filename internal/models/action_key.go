package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Action key discriminators. Every action in a merged tree carries exactly one
// stable key, used to route field edits back to the correct store.
const (
	ActionSourceTemplate = "template"
	ActionSourceCustom   = "custom"
)

// TemplateActionKey builds the stable key for a template-backed action.
func TemplateActionKey(definitionID string) string {
	return ActionSourceTemplate + ":" + definitionID
}

// CustomActionKey builds the stable key for an organization-created action.
func CustomActionKey(id uint) string {
	return ActionSourceCustom + ":" + strconv.FormatUint(uint64(id), 10)
}

// ParseActionKey splits an action key into its source discriminator and raw
// identifier. The identifier of a custom key is its numeric id rendered in
// decimal.
func ParseActionKey(key string) (source, id string, err error) {
	source, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return "", "", fmt.Errorf("malformed action key %q", key)
	}
	switch source {
	case ActionSourceTemplate:
		return source, id, nil
	case ActionSourceCustom:
		if _, convErr := strconv.ParseUint(id, 10, 64); convErr != nil {
			return "", "", fmt.Errorf("malformed custom action key %q", key)
		}
		return source, id, nil
	default:
		return "", "", fmt.Errorf("unknown action key source %q", source)
	}
}
