package stack

// Predicate classifies a file path.
type Predicate func(file string) bool

// Select returns the index of the first frame, innermost first, whose file
// satisfies both known and exists. It returns -1 when no frame qualifies.
// A nil predicate accepts everything.
func Select(frames []Frame, known, exists Predicate) int {
	for i, f := range frames {
		if f.File == "" {
			continue
		}
		if known != nil && !known(f.File) {
			continue
		}
		if exists != nil && !exists(f.File) {
			continue
		}
		return i
	}
	return -1
}

// SelectTypeCheck returns the first recorded location of a type-check
// failure. It is not validated: the file is known by construction.
func SelectTypeCheck(frames []Frame) int {
	if len(frames) == 0 {
		return -1
	}
	return 0
}
