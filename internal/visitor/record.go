package visitor

import (
	"strings"

	"resume/internal/geo"
)

// NotFound 位置字段不可用时存储的占位值
const NotFound = geo.NotFound

// Record 访客表中的一行，每个 (地址, 5 分钟时间桶) 一行
type Record struct {
	ID        string  `json:"id"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
	City      string  `json:"city"`
	Postal    string  `json:"postal"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Visits    int     `json:"visits"`
}

// NewRecord 以首次访问的位置快照创建记录，缺失字段填入占位值
func NewRecord(key string, loc geo.Location) Record {
	return Record{
		ID:        key,
		Country:   orNotFound(loc.CountryName),
		State:     orNotFound(loc.State),
		City:      orNotFound(loc.City),
		Postal:    orNotFound(loc.Postal),
		Longitude: loc.Longitude,
		Latitude:  loc.Latitude,
		Visits:    1,
	}
}

// Bucket 返回 ID 中第一个 "-" 之后的时间桶部分
func (r Record) Bucket() string {
	_, bucket, ok := strings.Cut(r.ID, "-")
	if !ok {
		return ""
	}
	return bucket
}

// HasCoordinates 经纬度不全为 0
func (r Record) HasCoordinates() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

func orNotFound(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotFound
	}
	return v
}
