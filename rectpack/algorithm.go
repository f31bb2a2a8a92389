package rectpack

// page 是一页的打包状态
//
// 每次放置都会在矩形右侧和下方生成新的候选角点，候选角点永远不会被删除，
// 只会因为碰撞或越界而不再可用。
type page struct {
	width      int     // 当前页宽度（自动尺寸时会增长）
	height     int     // 当前页高度
	corners    []Point // 候选左上角
	collisions []Rect  // 已放置矩形（含间距光环）
	packed     []Rect  // 已放置矩形（不含间距）
}

func newPage(width, height int) *page {
	return &page{
		width:   width,
		height:  height,
		corners: []Point{{X: 0, Y: 0}},
	}
}

// fits 测试 size 放在 corner 处时是否越界或与已放置矩形碰撞。
func (p *page) fits(corner Point, size Size, padding int) bool {
	rect := Rect{Point: corner, Size: size}
	bounds := p.bounds()
	if !bounds.ContainsRect(rect) {
		return false
	}
	padded := padRect(rect, padding)
	for i := range p.collisions {
		if padded.Intersects(p.collisions[i]) {
			return false
		}
	}
	return true
}

// best 在所有候选角点中选择得分最低的一个。
// 得分相同时依次比较 y、x，最后按角点记录顺序。
func (p *page) best(size Size, padding int, score scoreFunc) (Point, bool) {
	var (
		bestCorner Point
		bestScore  int
		found      bool
	)
	for _, corner := range p.corners {
		if !p.fits(corner, size, padding) {
			continue
		}
		s := score(p, Rect{Point: corner, Size: size}, padding)
		if !found || s < bestScore ||
			(s == bestScore && (corner.Y < bestCorner.Y || (corner.Y == bestCorner.Y && corner.X < bestCorner.X))) {
			bestCorner, bestScore, found = corner, s, true
		}
	}
	return bestCorner, found
}

// commit 在 corner 处放置矩形，并记录两个新的候选角点。
func (p *page) commit(corner Point, size Size, padding int, index int) Rect {
	rect := Rect{Point: corner, Size: size, Page: index}
	padded := padRect(rect, padding)
	p.collisions = append(p.collisions, padded)
	p.packed = append(p.packed, rect)
	p.addCorner(padded.TopRight())
	p.addCorner(padded.BottomLeft())
	return rect
}

func (p *page) addCorner(c Point) {
	for _, existing := range p.corners {
		if existing.Eq(c) {
			return
		}
	}
	p.corners = append(p.corners, c)
}

// bounds 返回当前页的范围
func (p *page) bounds() Rect {
	return NewRect(0, 0, p.width, p.height)
}

// extent 返回容纳所有已放置矩形所需的最小尺寸（不含间距光环）。
func (p *page) extent() Size {
	var size Size
	for i := range p.packed {
		size.Width = max(size.Width, p.packed[i].Right())
		size.Height = max(size.Height, p.packed[i].Bottom())
	}
	return size
}
