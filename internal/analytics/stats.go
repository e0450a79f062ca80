package analytics

import "time"

// DailyVisits 某一天的访问总数
type DailyVisits struct {
	Date   string `json:"date"` // 日期 "2006/01/02"
	Visits int    `json:"visits"`
}

// Marker 地图上的一个位置点
type Marker struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Lines     []string `json:"lines"`   // 国家/州/城市/邮编中非占位的部分
	Tooltip   string   `json:"tooltip"` // Lines 以 <br> 连接
}

// Row 表格中的一行
type Row struct {
	DateTime string `json:"date_time"` // ID 中的时间桶部分
	Country  string `json:"country"`
	State    string `json:"state"`
	City     string `json:"city"`
	Postal   string `json:"postal"`
	Visits   int    `json:"visits"`

	// 时间桶解析结果，用于按时间排序
	at time.Time
}

// Summary 汇总指标
type Summary struct {
	TotalVisits    int            `json:"total_visits"`
	UniqueVisitors int            `json:"unique_visitors"` // 不同键的数量
	Countries      int            `json:"countries"`
	VisitsByDate   map[string]int `json:"visits_by_date"`
}

// Report 访客页的全部数据
type Report struct {
	Summary Summary       `json:"summary"`
	Daily   []DailyVisits `json:"daily"`
	Markers []Marker      `json:"markers"`
	Rows    []Row         `json:"rows"`
}
