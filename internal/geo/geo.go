package geo

import (
	"context"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// NotFound 上游表示字段缺失时使用的字面值
const NotFound = "Not found"

// Location 地理位置描述，缺失字段为空字符串或 0
type Location struct {
	CountryName string  `json:"country_name"`
	State       string  `json:"state"`
	City        string  `json:"city"`
	Postal      string  `json:"postal"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
}

// Client 根据网络地址解析粗略位置
type Client interface {
	Lookup(ctx context.Context, addr string) (Location, error)
}

// payload 上游 JSON，字段可能缺失、为 null、为 "Not found"，坐标可能是字符串
type payload struct {
	CountryName field `json:"country_name"`
	State       field `json:"state"`
	City        field `json:"city"`
	Postal      field `json:"postal"`
	Longitude   field `json:"longitude"`
	Latitude    field `json:"latitude"`
}

// field 兼容字符串、数字与 null 的 JSON 值
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = field(v)
		return nil
	}
	// 数字、布尔值按原文保留
	*f = field(s)
	return nil
}

func (f field) text() string {
	v := strings.TrimSpace(string(f))
	if v == NotFound {
		return ""
	}
	return v
}

func (f field) float() float64 {
	v, err := strconv.ParseFloat(f.text(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (p payload) location() Location {
	return Location{
		CountryName: p.CountryName.text(),
		State:       p.State.text(),
		City:        p.City.text(),
		Postal:      p.Postal.text(),
		Longitude:   p.Longitude.float(),
		Latitude:    p.Latitude.float(),
	}
}
