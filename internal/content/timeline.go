package content

import (
	"fmt"
	"time"
)

// 时间线的 y 轴位置
const (
	LaneEducation  = -1
	LaneExperience = 1
	LaneEvents     = 3
)

// Bar 时间线上的一段经历，单位为距最早月份的月数
type Bar struct {
	Name      string `json:"name"`
	Lane      int    `json:"lane"`
	Base      int    `json:"base"`
	Duration  int    `json:"duration"`
	HoverText string `json:"hover_text"`
}

// Marker 时间线上的一个事件
type Marker struct {
	X         int    `json:"x"`
	Lane      int    `json:"lane"`
	HoverText string `json:"hover_text"`
}

// Timeline 经历与事件的图表数据
type Timeline struct {
	Labels  []string `json:"labels"` // 每月一个，如 "2009 Sep"
	Ticks   []int    `json:"ticks"`  // 每 4 个月一个刻度
	Bars    []Bar    `json:"bars"`
	Markers []Marker `json:"markers"`
}

// MonthDifference 两个日期相差的月数
func MonthDifference(first, second time.Time) int {
	return (second.Year()-first.Year())*12 + int(second.Month()) - int(first.Month())
}

// BuildTimeline 以最早的经历或事件为起点，逐月生成到 now 的时间线
func BuildTimeline(h History, now time.Time) Timeline {
	earliest := now
	for _, p := range h.Education {
		earliest = minTime(earliest, dateOf(p.Start))
	}
	for _, p := range h.Experience {
		earliest = minTime(earliest, dateOf(p.Start))
	}
	for _, e := range h.Events {
		earliest = minTime(earliest, dateOf(e.When))
	}

	t := Timeline{}
	for cur := earliest; !cur.After(now); cur = cur.AddDate(0, 1, 0) {
		t.Labels = append(t.Labels, cur.Format("2006 Jan"))
	}
	for i := 0; i < len(t.Labels); i += 4 {
		t.Ticks = append(t.Ticks, i)
	}

	for _, p := range h.Education {
		t.Bars = append(t.Bars, periodBar(p, LaneEducation, earliest, now))
	}
	for _, p := range h.Experience {
		t.Bars = append(t.Bars, periodBar(p, LaneExperience, earliest, now))
	}
	for _, e := range h.Events {
		when := dateOf(e.When)
		t.Markers = append(t.Markers, Marker{
			X:         MonthDifference(earliest, when),
			Lane:      LaneEvents,
			HoverText: fmt.Sprintf("<b>%s</b><br><i>%s</i>", e.What, when.Format("Jan 2006")),
		})
	}
	return t
}

func periodBar(p Period, lane int, earliest, now time.Time) Bar {
	start := dateOf(p.Start)
	end := now
	until := "current"
	if !p.Current {
		end = dateOf(p.End)
		until = end.Format("Jan 2006")
	}
	return Bar{
		Name:      p.Name,
		Lane:      lane,
		Base:      MonthDifference(earliest, start),
		Duration:  MonthDifference(start, end),
		HoverText: fmt.Sprintf("<b>%s</b><br>%s<br><i>%s to %s</i>", p.Name, p.Location, start.Format("Jan 2006"), until),
	}
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
