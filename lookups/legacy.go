package lookups

// Comment documents were written by several client versions which did not agree on field names.
// All historic spellings are listed here, in lookup priority order; new documents always use the
// first entry.
var (
	// reference to the commented tip
	CommentTipKeys = []string{"tipID", "tipId", "tip_id", "tip"}
	// comment body
	CommentTextKeys = []string{"text", "comment"}
	// author
	CommentUserKeys = []string{"userID", "userId", "author"}
	// display name copied into the comment at write time
	CommentNameKeys = []string{"authorName", "userName", "username"}
)

// FirstKey returns the first key of keys present in doc with a non-empty value
func FirstKey(doc map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := doc[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return k, true
	}
	return "", false
}

// Tips and ratings drifted the same way, only on fewer fields
var (
	// author of a tip
	TipAuthorKeys = []string{"userID", "userId", "authorId"}
	// reference from a rating to its tip
	RatingTipKeys = []string{"tipID", "tipId"}
)
