package pattern

// PatternAt returns the innermost pattern covering offset. Bitfield fields
// are not returned on their own since they share the bytes of their
// bitfield; pointer targets are searched as well.
func PatternAt(roots []Pattern, offset uint64) (Pattern, bool) {
	for _, root := range roots {
		if p := find(root, offset, false); p != nil {
			return p, true
		}
	}
	return nil, false
}

// HighlightAt returns the color of the innermost pattern covering offset.
// Padding is transparent and shows the color of its enclosing pattern.
func HighlightAt(roots []Pattern, offset uint64) (uint32, bool) {
	for _, root := range roots {
		if p := find(root, offset, true); p != nil {
			return p.Common().Color, true
		}
	}
	return 0, false
}

func find(p Pattern, offset uint64, skipPadding bool) Pattern {
	if _, ok := p.(*Bitfield); !ok {
		for _, m := range Members(p) {
			if found := find(m, offset, skipPadding); found != nil {
				return found
			}
		}
	}
	if ptr, ok := p.(*Pointer); ok && ptr.Target != nil && !ptr.Shared {
		if found := find(ptr.Target, offset, skipPadding); found != nil {
			return found
		}
	}

	if _, ok := p.(*Padding); ok && skipPadding {
		return nil
	}
	if p.Common().Contains(offset) {
		return p
	}
	return nil
}
