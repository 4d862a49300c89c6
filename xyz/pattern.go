// Package xyz reads and writes tiles stored as individual files laid out by a
// path pattern such as "/srv/tiles/{z}/{x}/{y}.png".
package xyz

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileloader/tile"
)

var ErrInvalidPattern = errors.New("tileloader: invalid file pattern")

var placeholders = []string{"{x}", "{y}", "{z}"}

// pattern is a file path template with {x}, {y} and {z} placeholders.
type pattern struct {
	raw  string
	re   *regexp.Regexp
	root string
}

func parsePattern(raw string) (*pattern, error) {
	for _, ph := range placeholders {
		if !strings.Contains(raw, ph) {
			return nil, fmt.Errorf("%w: placeholder %v not found in %q", ErrInvalidPattern, ph, raw)
		}
	}

	expr := regexp.QuoteMeta(filepath.Clean(raw))
	for _, ph := range placeholders {
		name := ph[1:2]
		expr = strings.ReplaceAll(expr, regexp.QuoteMeta(ph), `(?P<`+name+`>\d+)`)
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	p := &pattern{raw: raw, re: re}

	// The root is the deepest directory shared by every tile path.
	a := p.path(tile.Point{X: 0, Y: 0, Zoom: 0})
	b := p.path(tile.Point{X: 1, Y: 1, Zoom: 1})
	for a != b {
		a, b = filepath.Dir(a), filepath.Dir(b)
	}
	p.root = a
	return p, nil
}

func (p *pattern) path(pt tile.Point) string {
	return strings.NewReplacer(
		"{x}", strconv.Itoa(pt.X),
		"{y}", strconv.Itoa(pt.Y),
		"{z}", strconv.Itoa(pt.Zoom),
	).Replace(p.raw)
}

// match extracts the tile coordinates from a file path produced by path.
func (p *pattern) match(path string) (tile.Point, bool) {
	m := p.re.FindStringSubmatch(filepath.Clean(path))
	if m == nil {
		return tile.Point{}, false
	}
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(m[p.re.SubexpIndex(name)])
		if err != nil {
			return tile.Point{}, false
		}
		coords[i] = v
	}
	pt := tile.Point{X: coords[0], Y: coords[1], Zoom: coords[2]}
	return pt, pt.Valid()
}
