package rectpack

import (
	"errors"
	"fmt"
)

// DefaultSize 定义了矩形包装器的默认最大宽度/高度值
// 基于现代GPU的最大纹理尺寸。
const DefaultSize = 4096

// initialSize 是自动尺寸页的起始边长
const initialSize = 64

var (
	// ErrOverflow 表示矩形无法放入允许的最大页尺寸或页数
	ErrOverflow = errors.New("rectpack: rectangle does not fit the maximum page size")
	// ErrEmptyRect 表示矩形的宽度或高度小于1
	ErrEmptyRect = errors.New("rectpack: rectangle has zero area")
)

// Options 是包装器的配置
type Options struct {
	// Width, Height 是固定页尺寸。为0时页尺寸从小开始按需增长（自动尺寸）。
	Width, Height int
	// MaxWidth, MaxHeight 是页尺寸上限。为0时使用固定尺寸，或 DefaultSize。
	MaxWidth, MaxHeight int
	// Padding 定义矩形之间预留的空隙大小。
	Padding int
	// PowerOfTwo 强制页尺寸为2的幂
	PowerOfTwo bool
	// Square 强制页为正方形
	Square bool
	// MaxPages 限制页数，0表示不限制
	MaxPages int
	// Heuristic 选择候选角点的评分方式
	Heuristic Heuristic
}

// Page 是一页的打包结果
type Page struct {
	Width, Height int
	// Rects 按插入顺序排列
	Rects []Rect
}

// Packer 包含2D矩形包装器的状态
//
// 矩形严格按照插入顺序放置，不做任何按尺寸的重排，
// 因此相同的输入顺序和配置总是得到完全相同的布局。
type Packer struct {
	opts     Options
	score    scoreFunc
	unpacked []Size
	pages    []*page
	rects    []Rect
}

// NewPacker 创建并初始化一个新的矩形包装器
//
// 返回:
//
//	*Packer - 初始化成功的包装器实例
//	error - 如果尺寸参数无效则返回错误
func NewPacker(opts Options) (*Packer, error) {
	if opts.Width < 0 || opts.Height < 0 || opts.MaxWidth < 0 || opts.MaxHeight < 0 || opts.Padding < 0 || opts.MaxPages < 0 {
		return nil, fmt.Errorf("rectpack: negative size in options %+v", opts)
	}
	if (opts.Width == 0) != (opts.Height == 0) {
		return nil, fmt.Errorf("rectpack: width and height must both be fixed or both be automatic (given %vx%v)", opts.Width, opts.Height)
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = max(opts.Width, DefaultSize)
	}
	if opts.MaxHeight == 0 {
		opts.MaxHeight = max(opts.Height, DefaultSize)
	}
	// 上限本身按 Square/PowerOfTwo 向下取整，增长和收缩后的页尺寸都不会超出它
	if opts.Square {
		opts.MaxWidth = min(opts.MaxWidth, opts.MaxHeight)
		opts.MaxHeight = opts.MaxWidth
	}
	if opts.PowerOfTwo {
		opts.MaxWidth, opts.MaxHeight = prevPowerOfTwo(opts.MaxWidth), prevPowerOfTwo(opts.MaxHeight)
	}
	if opts.Width > 0 {
		opts.Width, opts.Height = roundSize(opts.Width, opts.Height, opts.PowerOfTwo, opts.Square)
		if opts.Width > opts.MaxWidth || opts.Height > opts.MaxHeight {
			return nil, fmt.Errorf("rectpack: page size %vx%v exceeds maximum %vx%v", opts.Width, opts.Height, opts.MaxWidth, opts.MaxHeight)
		}
	}
	return &Packer{opts: opts, score: opts.Heuristic.scorer()}, nil
}

// Options 返回生效的配置（已填充默认值）
func (p *Packer) Options() Options {
	return p.opts
}

// Limit 返回单个矩形允许的最大尺寸：固定页尺寸，或自动尺寸时的上限
func (p *Packer) Limit() Size {
	if p.opts.Width > 0 {
		return NewSize(p.opts.Width, p.opts.Height)
	}
	return NewSize(p.opts.MaxWidth, p.opts.MaxHeight)
}

// Insert 暂存待包装的尺寸，调用 Pack 时按插入顺序放置
func (p *Packer) Insert(sizes ...Size) {
	p.unpacked = append(p.unpacked, sizes...)
}

// Pack 按插入顺序放置所有暂存的尺寸
//
// 任何一个矩形超过最大页尺寸（或页数上限）时返回 ErrOverflow，
// 此时不会产生任何页。
func (p *Packer) Pack() error {
	limit := p.Limit()
	for _, size := range p.unpacked {
		if size.IsEmpty() {
			return fmt.Errorf("%w: id %d is %vx%v", ErrEmptyRect, size.ID, size.Width, size.Height)
		}
		if size.Width > limit.Width || size.Height > limit.Height {
			return fmt.Errorf("%w: id %d is %vx%v, maximum is %vx%v",
				ErrOverflow, size.ID, size.Width, size.Height, limit.Width, limit.Height)
		}
	}

	pages := p.pages
	rects := p.rects
	for _, size := range p.unpacked {
		var cur *page
		if len(pages) > 0 {
			cur = pages[len(pages)-1]
		}
		for {
			if cur != nil {
				if corner, ok := cur.best(size, p.opts.Padding, p.score); ok {
					rects = append(rects, cur.commit(corner, size, p.opts.Padding, len(pages)-1))
					break
				}
				if p.grow(cur) {
					continue
				}
			}
			if p.opts.MaxPages > 0 && len(pages) >= p.opts.MaxPages {
				return fmt.Errorf("%w: id %d needs page %d, limit is %d", ErrOverflow, size.ID, len(pages)+1, p.opts.MaxPages)
			}
			cur = p.newPage()
			pages = append(pages, cur)
		}
	}
	p.pages = pages
	p.rects = rects
	p.unpacked = p.unpacked[:0]
	return nil
}

func (p *Packer) newPage() *page {
	if p.opts.Width > 0 {
		return newPage(p.opts.Width, p.opts.Height)
	}
	w, h := roundSize(min(initialSize, p.opts.MaxWidth), min(initialSize, p.opts.MaxHeight), p.opts.PowerOfTwo, p.opts.Square)
	return newPage(min(w, p.opts.MaxWidth), min(h, p.opts.MaxHeight))
}

// grow 扩大自动尺寸页，优先扩大较短的一边；已达上限时返回 false
func (p *Packer) grow(pg *page) bool {
	if p.opts.Width > 0 {
		return false
	}
	w, h := pg.width, pg.height
	switch {
	case p.opts.Square:
		w, h = w*2, h*2
	case w <= h && w < p.opts.MaxWidth, h >= p.opts.MaxHeight:
		w *= 2
	default:
		h *= 2
	}
	w, h = roundSize(w, h, p.opts.PowerOfTwo, p.opts.Square)
	w, h = min(w, p.opts.MaxWidth), min(h, p.opts.MaxHeight)
	if w == pg.width && h == pg.height {
		return false
	}
	pg.width, pg.height = w, h
	return true
}

// Pages 返回每一页的最终尺寸与矩形
//
// 自动尺寸页收缩到已放置矩形的范围，然后按 PowerOfTwo/Square 向上取整，
// 不移动任何矩形。
func (p *Packer) Pages() []Page {
	out := make([]Page, len(p.pages))
	for i, pg := range p.pages {
		w, h := pg.width, pg.height
		if p.opts.Width == 0 {
			ext := pg.extent()
			w, h = roundSize(ext.Width, ext.Height, p.opts.PowerOfTwo, p.opts.Square)
			w, h = min(w, pg.width), min(h, pg.height)
		}
		out[i] = Page{Width: w, Height: h, Rects: pg.packed}
	}
	return out
}

// Rects 返回所有已放置的矩形，按插入顺序排列
func (p *Packer) Rects() []Rect {
	return p.rects
}

// Unpacked 返回暂存但尚未放置的尺寸
func (p *Packer) Unpacked() []Size {
	return p.unpacked
}

// Used 计算所有页的平均空间利用率(0.0-1.0)
func (p *Packer) Used() float64 {
	pages := p.Pages()
	var used, total int
	for _, pg := range pages {
		total += pg.Width * pg.Height
		for i := range pg.Rects {
			used += pg.Rects[i].Area()
		}
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// Clear 重置包装器状态(保留配置)
func (p *Packer) Clear() {
	p.pages = nil
	p.rects = nil
	p.unpacked = p.unpacked[:0]
}

// roundSize 按 PowerOfTwo/Square 向上取整
func roundSize(w, h int, powerOfTwo, square bool) (int, int) {
	if square {
		w = max(w, h)
		h = w
	}
	if powerOfTwo {
		w, h = nextPowerOfTwo(w), nextPowerOfTwo(h)
	}
	return w, h
}

// prevPowerOfTwo 返回不大于 n 的最大2的幂（n >= 1）
func prevPowerOfTwo(n int) int {
	v := 1
	for v <= n/2 {
		v <<= 1
	}
	return v
}

func nextPowerOfTwo(n int) int {
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}
