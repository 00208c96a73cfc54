package lookups

// Tip status values as stored in the "status" field
const (
	TipStatusDraft     = "draft"
	TipStatusPublished = "published"
)

// TipStatus normalizes a publish flag to its stored value
func TipStatus(published bool) string {
	if published {
		return TipStatusPublished
	}
	return TipStatusDraft
}
