package id

import (
	"sort"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLotIDSortable(t *testing.T) {
	t.Parallel()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = NewLotID()
	}
	assert.True(t, sort.StringsAreSorted(ids))

	parsed, err := ulid.Parse(ids[0])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ulid.Time(parsed.Time()), time.Minute)
}

func TestNewClientOrderID(t *testing.T) {
	t.Parallel()

	a, b := NewClientOrderID(), NewClientOrderID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidClientOrderID(a))
	assert.False(t, ValidClientOrderID("cccc1234"))
}
