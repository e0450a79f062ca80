package content

import "strings"

// Skill 技能树节点；叶子节点有熟练度，分类节点有子节点
type Skill struct {
	Name     string   `toml:"name" json:"name"`
	Level    int      `toml:"level" json:"level,omitempty"`
	Children []*Skill `toml:"children" json:"children,omitempty"`
}

func (s *Skill) IsLeaf() bool {
	return len(s.Children) == 0
}

// Flatten 展开为旭日图需要的 labels/parents 两个平行列表，顶层节点的父节点为空
func (s *Skill) Flatten() (labels, parents []string) {
	var walk func(n *Skill, parent string)
	walk = func(n *Skill, parent string) {
		for _, c := range n.Children {
			labels = append(labels, c.Name)
			parents = append(parents, parent)
			walk(c, c.Name)
		}
	}
	walk(s, "")
	return labels, parents
}

// Find 按 "/" 分隔的路径查找节点，找不到返回 nil
func (s *Skill) Find(path string) *Skill {
	cur := s
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		var next *Skill
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	if cur == s {
		return nil
	}
	return cur
}

// FirstLeaf 沿第一个子节点一直向下
func (s *Skill) FirstLeaf() *Skill {
	cur := s
	for !cur.IsLeaf() {
		cur = cur.Children[0]
	}
	if cur == s {
		return nil
	}
	return cur
}

// Selection 技能柱状图当前展示的技能
type Selection struct {
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Color  string `json:"color"`
	Rating string `json:"rating"`
}

// NewSelection 由叶子节点构造
func NewSelection(leaf *Skill) Selection {
	if leaf == nil {
		return Selection{}
	}
	return Selection{
		Name:   leaf.Name,
		Level:  leaf.Level,
		Color:  LevelColor(leaf.Level),
		Rating: LevelRating(leaf.Level),
	}
}

// Select 解析悬停路径：叶子节点直接选中；分类节点或无效路径保留上一次的选择，
// 没有上一次选择时取第一个叶子。返回 true 表示选择发生了变化。
func (s *Skill) Select(path string, previous string) (Selection, bool) {
	if n := s.Find(path); n != nil && n.IsLeaf() {
		return NewSelection(n), n.Name != previous
	}
	if previous != "" {
		if n := s.findLeafByName(previous); n != nil {
			return NewSelection(n), false
		}
	}
	first := s.FirstLeaf()
	return NewSelection(first), first != nil && first.Name != previous
}

func (s *Skill) findLeafByName(name string) *Skill {
	for _, c := range s.Children {
		if c.IsLeaf() && c.Name == name {
			return c
		}
		if n := c.findLeafByName(name); n != nil {
			return n
		}
	}
	return nil
}

// LevelColor 熟练度对应的颜色
func LevelColor(level int) string {
	switch {
	case level <= 20:
		return "#BD3B1B"
	case level <= 40:
		return "#D8A800"
	case level <= 60:
		return "#B9D870"
	case level <= 80:
		return "#B6C61A"
	default:
		return "#006344"
	}
}

var ratings = []string{"None", "Poor", "Below Average", "Good", "Excellent", "Master"}

// LevelRating 熟练度所在刻度的名称，刻度为 0/20/40/60/80/100
func LevelRating(level int) string {
	i := level / 20
	if i < 0 {
		i = 0
	}
	if i >= len(ratings) {
		i = len(ratings) - 1
	}
	return ratings[i]
}
