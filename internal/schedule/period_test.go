package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"questlog/internal/model"
)

func TestPeriodWindow_Daily(t *testing.T) {
	w := PeriodWindow(model.KindDaily, localDate(2024, time.March, 14))
	assert.Equal(t, Window{Start: "2024-03-14", End: "2024-03-14"}, w)
}

func TestPeriodWindow_WeeklyAnchorsOnSunday(t *testing.T) {
	// 2024-03-14 is a Thursday; the week began Sunday 2024-03-10.
	w := PeriodWindow(model.KindWeekly, localDate(2024, time.March, 14))
	assert.Equal(t, Window{Start: "2024-03-10", End: "2024-03-14"}, w)

	// On a Sunday the window is just that day so far.
	w = PeriodWindow(model.KindWeekly, localDate(2024, time.March, 10))
	assert.Equal(t, Window{Start: "2024-03-10", End: "2024-03-10"}, w)
}

func TestPeriodWindow_Monthly(t *testing.T) {
	w := PeriodWindow(model.KindMonthly, localDate(2024, time.February, 29))
	assert.Equal(t, Window{Start: "2024-02-01", End: "2024-02-29"}, w)
}

func TestPeriodWindow_Yearly(t *testing.T) {
	w := PeriodWindow(model.KindYearly, localDate(2024, time.July, 4))
	assert.Equal(t, Window{Start: "2024-01-01", End: "2024-07-04"}, w)
}

func TestPeriodWindow_ProjectFallsBackToDay(t *testing.T) {
	w := PeriodWindow(model.KindProject, localDate(2024, time.July, 4))
	assert.Equal(t, Window{Start: "2024-07-04", End: "2024-07-04"}, w)
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: "2024-03-10", End: "2024-03-16"}
	assert.True(t, w.Contains("2024-03-10"))
	assert.True(t, w.Contains("2024-03-16"))
	assert.False(t, w.Contains("2024-03-09"))
	assert.False(t, w.Contains("2024-03-17"))
}
