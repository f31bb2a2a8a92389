package rectpack

import "fmt"

// Point 描述了二维空间中的一个位置。
type Point struct {
	// X 是在水平 x 轴上的位置。
	X int `json:"x"`
	// Y 是在垂直 y 轴上的位置。
	Y int `json:"y"`
}

// NewPoint 初始化一个具有指定坐标的新点。
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Eq 判断接收者和另一个点是否具有相同的值。
func (p *Point) Eq(point Point) bool {
	return p.X == point.X && p.Y == point.Y
}

// String 返回点的字符串表示形式。
func (p *Point) String() string {
	return fmt.Sprintf("[%v, %v]", p.X, p.Y)
}

// Size 描述了二维空间中实体的尺寸。
type Size struct {
	// Width 是在水平 x 轴上的尺寸。
	Width int `json:"width"`
	// Height 是在垂直 y 轴上的尺寸。
	Height int `json:"height"`
	// ID 是用户定义的标识符，用于把放置结果映射回输入。
	ID int `json:"-"`
}

// NewSize 创建具有指定尺寸的新尺寸对象。
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// NewSizeID 创建具有指定尺寸和唯一标识符的新尺寸对象。
func NewSizeID(id, width, height int) Size {
	return Size{ID: id, Width: width, Height: height}
}

// Eq 判断接收者和另一个尺寸是否具有相同的值。ID 字段被忽略。
func (sz *Size) Eq(size Size) bool {
	return sz.Width == size.Width && sz.Height == size.Height
}

// String 返回尺寸的字符串表示形式。
func (sz *Size) String() string {
	return fmt.Sprintf("[%v, %v]", sz.Width, sz.Height)
}

// Area 返回总面积（宽度 * 高度）。
func (sz *Size) Area() int {
	return sz.Width * sz.Height
}

// IsEmpty 测试宽度或高度是否小于1。
func (sz *Size) IsEmpty() bool {
	return sz.Width <= 0 || sz.Height <= 0
}

// Rect 描述了某一页上的一个位置（左上角）和尺寸。
type Rect struct {
	// Point 表示矩形的左上角坐标。
	Point
	// Size 表示矩形的宽度和高度。
	Size
	// Page 是矩形所在页的索引。
	Page int `json:"page"`
}

// NewRect 初始化一个使用指定点和尺寸值的新矩形。
func NewRect(x, y, w, h int) Rect {
	return Rect{
		Point: Point{X: x, Y: y},
		Size:  Size{Width: w, Height: h},
	}
}

// Eq 比较两个矩形以确定位置和尺寸是否相等。
func (r *Rect) Eq(rect Rect) bool {
	return r.Point.Eq(rect.Point) && r.Size.Eq(rect.Size)
}

// String 返回描述矩形的字符串。
func (r *Rect) String() string {
	return fmt.Sprintf("[%v, %v, %v, %v]", r.X, r.Y, r.Width, r.Height)
}

// Right 返回矩形右边缘在 x 轴上的坐标。
func (r *Rect) Right() int {
	return r.X + r.Width
}

// Bottom 返回矩形下边缘在 y 轴上的坐标。
func (r *Rect) Bottom() int {
	return r.Y + r.Height
}

// TopRight 返回表示矩形右上角的点。
func (r *Rect) TopRight() Point {
	return Point{X: r.Right(), Y: r.Y}
}

// BottomLeft 返回表示矩形左下角的点。
func (r *Rect) BottomLeft() Point {
	return Point{X: r.X, Y: r.Bottom()}
}

// ContainsRect 测试指定的矩形是否包含在当前接收者的边界内。
func (r *Rect) ContainsRect(rect Rect) bool {
	return r.X <= rect.X &&
		rect.X+rect.Width <= r.X+r.Width &&
		r.Y <= rect.Y &&
		rect.Y+rect.Height <= r.Y+r.Height
}

// Intersects 测试接收者是否与指定的矩形有任何重叠。
func (r *Rect) Intersects(rect Rect) bool {
	return rect.X < r.X+r.Width &&
		r.X < rect.X+rect.Width &&
		rect.Y < r.Y+r.Height &&
		r.Y < rect.Y+rect.Height
}

// overlapsRows 测试两个矩形在 y 轴上的投影是否重叠。
func (r *Rect) overlapsRows(rect Rect) bool {
	return rect.Y < r.Y+r.Height && r.Y < rect.Y+rect.Height
}

// overlapsColumns 测试两个矩形在 x 轴上的投影是否重叠。
func (r *Rect) overlapsColumns(rect Rect) bool {
	return rect.X < r.X+r.Width && r.X < rect.X+rect.Width
}

// padRect 返回带有间距光环的矩形
//
//	rect - 放置在页上的矩形
//	padding - 要添加的间距大小
//
// 光环只向右、向下延伸，因此相邻两个矩形之间恰好相隔 padding 像素，
// 贴着页面左上边缘的矩形不会浪费空间。
func padRect(rect Rect, padding int) Rect {
	if padding <= 0 {
		return rect
	}
	rect.Width += padding
	rect.Height += padding
	return rect
}
