package flow

import "fmt"

const (
	textEnterTitle    = "Enter an item title"
	textCreated       = "Item created!"
	textCreateFailed  = "Failed to create item"
	textUpdated       = "Item updated!"
	textUpdateFailed  = "Failed to update item"
	textDeleteFailed  = "Failed to delete item"
	textLoadFailed    = "Failed to load items"
	textBackendDown   = "Backend is unavailable"
	textDeletedFormat = "Item %q deleted!"
	textHealthyFormat = "Backend is up! Status: %s"
)

func failure(base string, err error) string {
	return fmt.Sprintf("%s: %s", base, reason(err))
}
