package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tuition-engine/billing"
)

func TestParseMonth_WireFormat(t *testing.T) {
	m, err := billing.ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, time.March, m.Month)
	assert.Equal(t, "2024-03", m.String())
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, bad := range []string{"", "2024", "2024-13", "03-2024", "March 2024"} {
		_, err := billing.ParseMonth(bad)
		assert.Error(t, err, "should reject %q", bad)
	}
}

func TestMonth_Ordering(t *testing.T) {
	jan := billing.NewMonth(2024, time.January)
	feb := billing.NewMonth(2024, time.February)
	decPrev := billing.NewMonth(2023, time.December)

	assert.True(t, jan.Before(feb))
	assert.True(t, feb.After(jan))
	assert.True(t, decPrev.Before(jan), "year boundary must order correctly")
	assert.True(t, jan.Equal(billing.NewMonth(2024, time.January)))
	assert.False(t, jan.Before(jan))
}

func TestMonth_AddMonths_CrossesYearBoundary(t *testing.T) {
	nov := billing.NewMonth(2024, time.November)

	assert.Equal(t, billing.NewMonth(2025, time.January), nov.AddMonths(2))
	assert.Equal(t, billing.NewMonth(2023, time.December), nov.AddMonths(-11))
	assert.Equal(t, nov, nov.AddMonths(0))
}

func TestMonthOf_TruncatesToMonth(t *testing.T) {
	at := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, billing.NewMonth(2024, time.March), billing.MonthOf(at))
}
