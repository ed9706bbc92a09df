package pattern

import "strconv"

// defaultColors are packed as 0xAABBGGRR with a translucent alpha.
var defaultColors = [...]uint32{
	0x70B4771F, 0x700E7FFF, 0x702CA02C, 0x702827D6, 0x70BD6794,
	0x704B568C, 0x70C277E3, 0x707F7F7F, 0x7022BDBC, 0x70CFBE17,
}

// Palette hands out colors in a fixed rotation. Reset it before every
// evaluation so that colors are reproducible.
type Palette struct {
	next int
}

// Next returns the next color of the rotation.
func (p *Palette) Next() uint32 {
	c := defaultColors[p.next]
	p.next = (p.next + 1) % len(defaultColors)
	return c
}

// Reset restarts the rotation at the first color.
func (p *Palette) Reset() { p.next = 0 }

// ParseColor converts an "RRGGBB" attribute value into the packed form.
func ParseColor(s string) (uint32, bool) {
	if len(s) != 6 {
		return 0, false
	}
	rgb, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	r, g, b := uint32(rgb>>16)&0xFF, uint32(rgb>>8)&0xFF, uint32(rgb)&0xFF
	return 0x70<<24 | b<<16 | g<<8 | r, true
}
