package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

var _testNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) // a Wednesday

func testRecord(personID model.ID, startedAt time.Time, duration int) model.TimeRecord {
	return model.TimeRecord{
		Number:     "1001",
		Stage:      model.StageSeparation,
		PersonID:   personID,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Duration(duration) * time.Second),
		Duration:   duration,
	}
}

func TestParseWindow(t *testing.T) {
	for _, s := range []string{"", "all", "today", "week", "month"} {
		_, err := ParseWindow(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseWindow("year")
	assert.Error(t, err)
}

func TestWindowStart(t *testing.T) {
	t.Run("all is unbounded", func(t *testing.T) {
		_, bounded := WindowAll.Start(_testNow)
		assert.False(t, bounded)
	})

	t.Run("today starts at midnight", func(t *testing.T) {
		start, bounded := WindowToday.Start(_testNow)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("week starts on sunday", func(t *testing.T) {
		start, bounded := WindowWeek.Start(_testNow)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("month starts on the first", func(t *testing.T) {
		start, bounded := WindowMonth.Start(_testNow)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	})
}

func TestFilter(t *testing.T) {
	records := []model.TimeRecord{
		testRecord(1, _testNow.Add(-2*time.Hour), 60),        // today
		testRecord(1, _testNow.AddDate(0, 0, -2), 120),       // this week, not today
		testRecord(2, _testNow.AddDate(0, 0, -8), 180),       // this month, not this week
		testRecord(2, _testNow.AddDate(0, -2, 0), 240),       // older
	}

	assert.Len(t, Filter(records, WindowAll, _testNow, nil), 4)
	assert.Len(t, Filter(records, WindowToday, _testNow, nil), 1)
	assert.Len(t, Filter(records, WindowWeek, _testNow, nil), 2)
	assert.Len(t, Filter(records, WindowMonth, _testNow, nil), 3)

	personID := model.ID(2)
	byPerson := Filter(records, WindowAll, _testNow, &personID)
	require.Len(t, byPerson, 2)
	for _, record := range byPerson {
		assert.Equal(t, personID, record.PersonID)
	}
}

func TestSummarize(t *testing.T) {
	people := []model.Person{
		{ID: 1, Name: "Bruna"},
		{ID: 2, Name: "Ana"},
		{ID: 3, Name: "Carlos"},
	}
	records := []model.TimeRecord{
		testRecord(1, _testNow, 100),
		testRecord(1, _testNow, 50),
		testRecord(1, _testNow, 151),
		testRecord(2, _testNow, 200),
	}

	summary := Summarize(people, records)
	require.Len(t, summary, 3)

	// Sorted by name.
	assert.Equal(t, "Ana", summary[0].PersonName)
	assert.Equal(t, "Bruna", summary[1].PersonName)
	assert.Equal(t, "Carlos", summary[2].PersonName)

	bruna := summary[1]
	assert.Equal(t, 3, bruna.Count)
	assert.Equal(t, 301, bruna.Total)
	assert.Equal(t, 100, bruna.Average, "average is floored")
	assert.Equal(t, 50, bruna.Min)
	assert.Equal(t, 151, bruna.Max)

	carlos := summary[2]
	assert.Equal(t, 0, carlos.Count)
	assert.Equal(t, 0, carlos.Total)
	assert.Equal(t, 0, carlos.Average)

	t.Run("unknown person ignored", func(t *testing.T) {
		summary := Summarize(people, []model.TimeRecord{testRecord(99, _testNow, 10)})
		for _, stats := range summary {
			assert.Equal(t, 0, stats.Count)
		}
	})
}

func TestDetails(t *testing.T) {
	people := []model.Person{{ID: 1, Name: "Bruna"}}
	records := []model.TimeRecord{
		testRecord(1, _testNow.Add(-2*time.Hour), 60),
		testRecord(1, _testNow, 90),
		testRecord(7, _testNow.Add(-time.Hour), 30),
	}

	rows := Details(people, records)
	require.Len(t, rows, 3)

	// Newest first.
	assert.True(t, rows[0].StartedAt.After(rows[1].StartedAt))
	assert.True(t, rows[1].StartedAt.After(rows[2].StartedAt))

	assert.Equal(t, "Bruna", rows[0].PersonName)
	assert.Equal(t, "unknown", rows[1].PersonName)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "00:01:30", FormatDuration(90))
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "27:46:40", FormatDuration(100000))
	assert.Equal(t, "00:00:00", FormatDuration(-5))
}

func TestWriteSummaryXLSX(t *testing.T) {
	summary := []PersonStats{
		{PersonID: 1, PersonName: "Ana", Count: 2, Total: 300, Average: 150, Min: 100, Max: 200},
		{PersonID: 2, PersonName: "Bruna"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryXLSX(&buf, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, []string{"Ana", "2", "00:02:30", "00:01:40", "00:03:20"}, rows[1])
	assert.Equal(t, []string{"Bruna", "0", "-", "-", "-"}, rows[2])
}

func TestWriteDetailsXLSX(t *testing.T) {
	details := []DetailRow{
		{PersonName: "Ana", Number: "1001", Stage: "separation", StartedAt: _testNow, Duration: 95},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDetailsXLSX(&buf, details))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Ana", "1001", "separation", "2025-03-12", "00:01:35"}, rows[1])
}
