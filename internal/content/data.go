package content

import (
	"fmt"
	"io/fs"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Profile 个人信息与外链
type Profile struct {
	Name     string  `toml:"name"`
	Headline string  `toml:"headline"`
	Image    string  `toml:"image"`
	Links    []Link  `toml:"links"`
	Contact  Contact `toml:"contact"`
}

type Link struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

type Contact struct {
	Email     string   `toml:"email"`
	Office    string   `toml:"office"`
	Address   string   `toml:"address"`
	Latitude  float64  `toml:"latitude"`
	Longitude float64  `toml:"longitude"`
	Notes     []string `toml:"notes"`
}

// Period 教育或工作经历
type Period struct {
	Name     string         `toml:"name"`
	Location string         `toml:"location"`
	Start    toml.LocalDate `toml:"start"`
	End      toml.LocalDate `toml:"end"`
	Current  bool           `toml:"current"` // 至今，End 取当前日期
}

type Event struct {
	What string         `toml:"what"`
	When toml.LocalDate `toml:"when"`
}

// History 时间线数据
type History struct {
	Education  []Period `toml:"education"`
	Experience []Period `toml:"experience"`
	Events     []Event  `toml:"events"`
}

type Project struct {
	Name    string `toml:"name"`
	Page    string `toml:"page"` // 对应子页面名称，可为空
	Summary string `toml:"summary"`
}

type Research struct {
	Summary  string    `toml:"summary"`
	Projects []Project `toml:"projects"`
}

type Publication struct {
	Title string `toml:"title"`
	Venue string `toml:"venue"`
	Year  int    `toml:"year"`
}

type Course struct {
	Course      string   `toml:"course"`
	Role        string   `toml:"role"`
	Institution string   `toml:"institution"`
	Terms       []string `toml:"terms"`
}

// Article 子页面正文
type Article struct {
	Title      string   `toml:"title"`
	Paragraphs []string `toml:"paragraphs"`
}

// Sections 研究、论文、教学与项目子页面
type Sections struct {
	Research     Research           `toml:"research"`
	Publications []Publication      `toml:"publications"`
	Teaching     []Course           `toml:"teaching"`
	Projects     map[string]Article `toml:"projects"`
}

// Data 全部内容
type Data struct {
	Profile  Profile
	History  History
	Skills   *Skill
	Sections Sections
}

// Load 从内容目录读取 profile/history/skills/sections 四个 TOML 文件
func Load(fsys fs.FS) (*Data, error) {
	d := &Data{}
	if err := decode(fsys, "profile.toml", &d.Profile); err != nil {
		return nil, err
	}
	if err := decode(fsys, "history.toml", &d.History); err != nil {
		return nil, err
	}
	if err := decode(fsys, "sections.toml", &d.Sections); err != nil {
		return nil, err
	}

	var skills struct {
		Skills []*Skill `toml:"skills"`
	}
	if err := decode(fsys, "skills.toml", &skills); err != nil {
		return nil, err
	}
	d.Skills = &Skill{Children: skills.Skills}
	return d, nil
}

func decode(fsys fs.FS, name string, v any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("读取内容 %s 失败: %w", name, err)
	}
	if err := toml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("解析内容 %s 失败: %w", name, err)
	}
	return nil
}

func dateOf(d toml.LocalDate) time.Time {
	return d.AsTime(time.UTC)
}
