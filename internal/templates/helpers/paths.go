package helpers

import (
	"net/url"
	"strconv"
)

// MountPath receives the form that mounts a new widget.
func MountPath() string {
	return "/"
}

// WidgetPath is the page and fragment URL of a mounted widget.
func WidgetPath(widgetID string) string {
	return "/w/" + url.PathEscape(widgetID)
}

// CategoryPath receives the category selector form.
func CategoryPath(widgetID string) string {
	return WidgetPath(widgetID) + "/category"
}

// ClearPath resets the category filter.
func ClearPath(widgetID string) string {
	return WidgetPath(widgetID) + "/clear"
}

// TogglePath flips the expansion of one card.
func TogglePath(widgetID string, creatureID int) string {
	return WidgetPath(widgetID) + "/cards/" + strconv.Itoa(creatureID) + "/toggle"
}
