package rectpack

import (
	"fmt"
	"strings"
)

// Heuristic 选择候选角点的评分方式
type Heuristic uint8

const (
	// MinWaste 按角点留下的空隙评分：到左侧、上方最近障碍（或页边）的距离，
	// 加上矩形与右侧、下方相邻矩形之间夹住的窄缝宽度。
	// 一直延伸到右侧或下方页边的空间不计入，后续矩形仍可使用。
	MinWaste Heuristic = iota
	// BottomLeft 优先选择最靠上、其次最靠左的角点
	BottomLeft
)

var heuristicNames = map[string]Heuristic{
	"minwaste":   MinWaste,
	"bottomleft": BottomLeft,
}

func (h Heuristic) String() string {
	switch h {
	case MinWaste:
		return "MinWaste"
	case BottomLeft:
		return "BottomLeft"
	}
	return fmt.Sprintf("Heuristic(%d)", uint8(h))
}

// ResolveHeuristic 把启发式名称（不区分大小写）解析为对应的值
func ResolveHeuristic(name string) (Heuristic, error) {
	if h, ok := heuristicNames[strings.ToLower(name)]; ok {
		return h, nil
	}
	return 0, fmt.Errorf("rectpack: unknown heuristic %q", name)
}

// scoreFunc 计算矩形放在某个角点时的得分，得分越低越好
type scoreFunc func(p *page, rect Rect, padding int) int

func (h Heuristic) scorer() scoreFunc {
	if h == BottomLeft {
		return scoreBottomLeft
	}
	return scoreMinWaste
}

func scoreBottomLeft(p *page, rect Rect, _ int) int {
	return rect.Y*(p.width+1) + rect.X
}

func scoreMinWaste(p *page, rect Rect, padding int) int {
	padded := padRect(rect, padding)
	left, top := 0, 0
	right, bottom := -1, -1
	for i := range p.collisions {
		c := &p.collisions[i]
		if padded.overlapsRows(*c) {
			if c.Right() <= rect.X {
				left = max(left, c.Right())
			}
			if c.X >= padded.Right() && (right < 0 || c.X < right) {
				right = c.X
			}
		}
		if padded.overlapsColumns(*c) {
			if c.Bottom() <= rect.Y {
				top = max(top, c.Bottom())
			}
			if c.Y >= padded.Bottom() && (bottom < 0 || c.Y < bottom) {
				bottom = c.Y
			}
		}
	}
	waste := (rect.X - left) + (rect.Y - top)
	if right >= 0 {
		waste += right - padded.Right()
	}
	if bottom >= 0 {
		waste += bottom - padded.Bottom()
	}
	return waste
}
