package analytics

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"resume/internal/logging"
	"resume/internal/visitor"
)

func rec(id, country string, lat, lon float64, visits int) visitor.Record {
	return visitor.Record{
		ID: id, Country: country, State: visitor.NotFound, City: visitor.NotFound, Postal: visitor.NotFound,
		Latitude: lat, Longitude: lon, Visits: visits,
	}
}

func TestDailySeries_EmptyStoreCoversWindow(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)
	series := DailySeries(nil, today, 30)

	require.Len(t, series, 31)
	require.Equal(t, "2024/03/01", series[0].Date)
	require.Equal(t, "2024/03/31", series[30].Date)
	for _, d := range series {
		require.Zero(t, d.Visits)
	}
}

func TestDailySeries_SumsAndFillsGaps(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
	records := []visitor.Record{
		rec("1.1.1.1-2024/03/10 10:05AM", "Canada", 0, 0, 3),
		rec("2.2.2.2-2024/03/10 11:45PM", "Egypt", 0, 0, 2),
		rec("1.1.1.1-2024/03/12 01:00AM", "Canada", 0, 0, 1),
		rec("garbage", "Canada", 0, 0, 100),
	}
	series := DailySeries(records, today, 30)

	require.Len(t, series, 31)
	got := make(map[string]int)
	for _, d := range series {
		got[d.Date] = d.Visits
	}
	require.Equal(t, 5, got["2024/03/10"])
	require.Equal(t, 0, got["2024/03/11"])
	require.Equal(t, 1, got["2024/03/12"])

	total := 0
	for _, d := range series {
		total += d.Visits
	}
	require.Equal(t, 6, total)
}

func TestDailySeries_ExtendsToEarliestRecord(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
	records := []visitor.Record{rec("1.1.1.1-2023/12/25 10:05AM", "Canada", 0, 0, 4)}
	series := DailySeries(records, today, 30)

	require.Equal(t, "2023/12/25", series[0].Date)
	require.Equal(t, 4, series[0].Visits)
	require.Equal(t, "2024/03/31", series[len(series)-1].Date)
	// 2023/12/25 到 2024/03/31 共 98 天
	require.Len(t, series, 98)

	// 连续无缺口
	for i := 1; i < len(series); i++ {
		prev, err := time.Parse(visitor.DateLayout, series[i-1].Date)
		require.NoError(t, err)
		cur, err := time.Parse(visitor.DateLayout, series[i].Date)
		require.NoError(t, err)
		require.Equal(t, prev.AddDate(0, 0, 1), cur)
	}
}

func TestMarkers_SkipsZeroCoordinatesAndSentinels(t *testing.T) {
	t.Parallel()

	records := []visitor.Record{
		rec("a-2024/01/01 10:05AM", "Canada", 0, 0, 1),
		{
			ID: "b-2024/01/01 10:05AM", Country: "Canada", State: "Ontario", City: visitor.NotFound,
			Postal: "M5S", Latitude: 43.6, Longitude: -79.4, Visits: 1,
		},
		rec("c-2024/01/01 10:05AM", visitor.NotFound, 0, 12.5, 1),
	}
	markers := Markers(records)

	require.Len(t, markers, 2)
	require.Equal(t, []string{"Canada", "Ontario", "M5S"}, markers[0].Lines)
	require.Equal(t, "Canada<br>Ontario<br>M5S", markers[0].Tooltip)
	require.Empty(t, markers[1].Lines)
	for _, m := range markers {
		require.False(t, m.Latitude == 0 && m.Longitude == 0)
	}
}

func TestRows_DisplayMapping(t *testing.T) {
	t.Parallel()

	rows := Rows([]visitor.Record{
		rec("1.2.3.4-2024/01/01 10:05AM", "Israel", 0, 0, 2),
		rec("1.2.3.5-2024/01/01 10:05AM", "Jordan", 0, 0, 1),
	})

	require.Equal(t, "2024/01/01 10:05AM", rows[0].DateTime)
	require.Equal(t, "Palestine", rows[0].Country)
	require.Equal(t, "Jordan", rows[1].Country)
	require.Equal(t, 2, rows[0].Visits)
}

func TestSortRows(t *testing.T) {
	t.Parallel()

	rows := Rows([]visitor.Record{
		rec("a-2024/01/01 01:05PM", "Canada", 0, 0, 5),
		rec("b-2024/01/01 10:05AM", "Egypt", 0, 0, 1),
		rec("c-2023/12/31 11:55PM", "Brazil", 0, 0, 3),
	})

	require.NoError(t, SortRows(rows, "date_time", false))
	require.Equal(t, []string{"2023/12/31 11:55PM", "2024/01/01 10:05AM", "2024/01/01 01:05PM"},
		[]string{rows[0].DateTime, rows[1].DateTime, rows[2].DateTime})

	require.NoError(t, SortRows(rows, "visits", true))
	require.Equal(t, []int{5, 3, 1}, []int{rows[0].Visits, rows[1].Visits, rows[2].Visits})

	require.NoError(t, SortRows(rows, "country", false))
	require.Equal(t, "Brazil", rows[0].Country)

	require.Error(t, SortRows(rows, "longitude", false))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]visitor.Record{
		rec("a-2024/01/01 10:05AM", "Canada", 0, 0, 2),
		rec("b-2024/01/01 11:05AM", "Canada", 0, 0, 1),
		rec("c-2024/01/02 10:05AM", visitor.NotFound, 0, 0, 4),
	})

	require.Equal(t, 7, s.TotalVisits)
	require.Equal(t, 3, s.UniqueVisitors)
	require.Equal(t, 1, s.Countries)
	require.Equal(t, map[string]int{"2024/01/01": 3, "2024/01/02": 4}, s.VisitsByDate)
}

type failingReader struct{}

func (failingReader) All(context.Context) ([]visitor.Record, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type sliceReader []visitor.Record

func (s sliceReader) All(context.Context) ([]visitor.Record, error) {
	return s, nil
}

func TestReporter_DegradesToEmptyDataset(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC))
	for _, reader := range []Reader{failingReader{}, nil, sliceReader{}} {
		r := NewReporter(logging.Discard(), reader, clock, time.UTC, 30)
		report := r.Report(context.Background())

		require.Empty(t, report.Rows)
		require.Empty(t, report.Markers)
		require.Len(t, report.Daily, 31)
		require.Zero(t, report.Summary.TotalVisits)
	}
}

func TestReporter_Report(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	r := NewReporter(logging.Discard(), sliceReader{
		rec("a-2024/01/01 10:05PM", "Israel", 31.7, 35.2, 2),
	}, clock, loc, 0)
	report := r.Report(context.Background())

	// 多伦多时间仍是 1 月 1 日
	require.Equal(t, "2024/01/01", report.Daily[len(report.Daily)-1].Date)
	require.Equal(t, 2, report.Daily[len(report.Daily)-1].Visits)
	require.Len(t, report.Markers, 1)
	require.Equal(t, "Palestine", report.Rows[0].Country)
	require.Equal(t, "Palestine", report.Markers[0].Lines[0])
}
