package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"resume/internal/visitor"
)

// 显示时替换的国家名
var countryDisplay = map[string]string{
	"Israel": "Palestine",
}

// DisplayCountry 返回国家的显示名
func DisplayCountry(country string) string {
	if v, ok := countryDisplay[country]; ok {
		return v
	}
	return country
}

// recordDate 取记录时间桶中的日期，ID 无法解析时返回 false
func recordDate(rec visitor.Record) (time.Time, bool) {
	datePart, _, _ := strings.Cut(rec.Bucket(), " ")
	d, err := time.Parse(visitor.DateLayout, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// civilDate 取 t 在其时区中的日历日期（以 UTC 零点表示）
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailySeries 按日期汇总访问次数并补零
// 窗口为 [min(today-windowDays, 最早日期), today]，每天一项，按时间顺序
func DailySeries(records []visitor.Record, today time.Time, windowDays int) []DailyVisits {
	end := civilDate(today)
	start := end.AddDate(0, 0, -windowDays)

	byDate := make(map[time.Time]int)
	for _, rec := range records {
		d, ok := recordDate(rec)
		if !ok {
			continue
		}
		byDate[d] += rec.Visits
		if d.Before(start) {
			start = d
		}
	}

	series := make([]DailyVisits, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series = append(series, DailyVisits{
			Date:   d.Format(visitor.DateLayout),
			Visits: byDate[d],
		})
	}
	return series
}

// Markers 为有坐标的记录生成地图点，经纬度均为 0 的记录跳过
func Markers(records []visitor.Record) []Marker {
	markers := make([]Marker, 0, len(records))
	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		lines := make([]string, 0, 4)
		for _, v := range []string{DisplayCountry(rec.Country), rec.State, rec.City, rec.Postal} {
			if v != visitor.NotFound && v != "" {
				lines = append(lines, v)
			}
		}
		markers = append(markers, Marker{
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Lines:     lines,
			Tooltip:   strings.Join(lines, "<br>"),
		})
	}
	return markers
}

// Rows 将记录转换为表格行
func Rows(records []visitor.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		bucket := rec.Bucket()
		at, _ := time.Parse(visitor.BucketLayout, bucket)
		rows = append(rows, Row{
			DateTime: bucket,
			Country:  DisplayCountry(rec.Country),
			State:    rec.State,
			City:     rec.City,
			Postal:   rec.Postal,
			Visits:   rec.Visits,
			at:       at,
		})
	}
	return rows
}

// Columns 表格可排序的列
var Columns = []string{"date_time", "country", "state", "city", "postal", "visits"}

// SortRows 按列稳定排序，列名无效时返回错误
func SortRows(rows []Row, column string, desc bool) error {
	var compare func(a, b Row) int
	switch column {
	case "date_time", "":
		compare = func(a, b Row) int {
			if c := a.at.Compare(b.at); c != 0 {
				return c
			}
			return cmp.Compare(a.DateTime, b.DateTime)
		}
	case "country":
		compare = func(a, b Row) int { return cmp.Compare(a.Country, b.Country) }
	case "state":
		compare = func(a, b Row) int { return cmp.Compare(a.State, b.State) }
	case "city":
		compare = func(a, b Row) int { return cmp.Compare(a.City, b.City) }
	case "postal":
		compare = func(a, b Row) int { return cmp.Compare(a.Postal, b.Postal) }
	case "visits":
		compare = func(a, b Row) int { return cmp.Compare(a.Visits, b.Visits) }
	default:
		return fmt.Errorf("unknown column %q", column)
	}

	if desc {
		slices.SortStableFunc(rows, func(a, b Row) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(rows, compare)
	}
	return nil
}

// Summarize 汇总总访问量、键数量、国家数与按日访问量
func Summarize(records []visitor.Record) Summary {
	s := Summary{VisitsByDate: make(map[string]int)}
	countries := make(map[string]struct{})
	for _, rec := range records {
		s.TotalVisits += rec.Visits
		s.UniqueVisitors++
		if rec.Country != visitor.NotFound && rec.Country != "" {
			countries[rec.Country] = struct{}{}
		}
		if d, ok := recordDate(rec); ok {
			s.VisitsByDate[d.Format(visitor.DateLayout)] += rec.Visits
		}
	}
	s.Countries = len(countries)
	return s
}
