package lookups

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeWindow(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, RangeWeek.Window())
	assert.Equal(t, 30*24*time.Hour, RangeMonth.Window())
	assert.Zero(t, RangeAll.Window())
	assert.False(t, TimeRange("year").Valid())
}

func TestFirstKey(t *testing.T) {
	doc := map[string]interface{}{"tipId": "t1", "tipID": "", "comment": "hi"}

	k, ok := FirstKey(doc, CommentTipKeys)
	assert.True(t, ok)
	assert.Equal(t, "tipId", k)

	k, ok = FirstKey(doc, CommentTextKeys)
	assert.True(t, ok)
	assert.Equal(t, "comment", k)

	_, ok = FirstKey(doc, CommentNameKeys)
	assert.False(t, ok)
}

func TestTipStatus(t *testing.T) {
	assert.Equal(t, TipStatusPublished, TipStatus(true))
	assert.Equal(t, TipStatusDraft, TipStatus(false))
}
