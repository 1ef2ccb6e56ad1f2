package arpa

// Point is one (angle, radius) sample on a traced contour.
type Point struct {
	Angle int
	R     int
}

const (
	MinContourLength = 6
	MaxContourLength = 2000
)

// fourDirections walks clockwise starting "up" (toward the center,
// decreasing r), matching the left-turn-first Moore-neighbor rule spec
// §4.E step 2 describes: at each step prefer the direction one turn to
// the left of the direction just taken, falling back clockwise until a
// blob pixel is found.
var fourDirections = [4][2]int{
	{0, -1}, // toward center
	{1, 0},  // clockwise (increasing angle)
	{0, 1},  // away from center
	{-1, 0}, // counter-clockwise
}

// MultiPix reports whether the pixel at (angle, r) belongs to a blob of
// more than one connected pixel. A single isolated pixel returns false
// and is cleared, matching spec §8's boundary behavior.
func MultiPix(h *History, angle, r int) bool {
	if !h.IsBlob(angle, r) {
		return false
	}
	count := 0
	for _, d := range fourDirections {
		if h.IsBlob(angle+d[0], r+d[1]) {
			count++
		}
	}
	if count == 0 {
		h.Slot(angle).Pixels[r] = 0 // isolated single pixel is not a target
		return false
	}
	return true
}

// FindContourFromInside walks inward from a point known to be inside a
// blob until it reaches the blob's edge, then traces the boundary
// clockwise (spec §4.E step 2 "find_contour_from_inside").
func FindContourFromInside(h *History, start Point) ([]Point, bool) {
	p := start
	for h.IsBlob(p.Angle, p.R) && p.R > 0 {
		p.R--
	}
	if !h.IsBlob(p.Angle, p.R) {
		p.R++ // stepped one past the edge; back up onto the blob
	}
	return traceContour(h, p)
}

// FindNearestContour spirals outward from center up to dist pixels
// looking for a blob edge to trace (spec §4.E step 2
// "find_nearest_contour").
func FindNearestContour(h *History, center Point, dist int) ([]Point, bool) {
	if h.IsBlob(center.Angle, center.R) {
		return FindContourFromInside(h, center)
	}
	for radius := 1; radius <= dist; radius++ {
		for da := -radius; da <= radius; da++ {
			for _, dr := range []int{-radius, radius} {
				p := Point{Angle: center.Angle + da, R: center.R + dr}
				if h.IsBlob(p.Angle, p.R) {
					return FindContourFromInside(h, p)
				}
			}
		}
		for dr := -radius + 1; dr <= radius-1; dr++ {
			for _, da := range []int{-radius, radius} {
				p := Point{Angle: center.Angle + da, R: center.R + dr}
				if h.IsBlob(p.Angle, p.R) {
					return FindContourFromInside(h, p)
				}
			}
		}
	}
	return nil, false
}

// traceContour walks the boundary of the blob containing edge clockwise
// using a four-direction chain code, up to MaxContourLength points.
func traceContour(h *History, edge Point) ([]Point, bool) {
	if !h.IsBlob(edge.Angle, edge.R) {
		return nil, false
	}
	pts := make([]Point, 0, 64)
	pts = append(pts, edge)
	cur := edge
	// Start one turn clockwise from the first direction that leaves the
	// blob, so the left-turn-first rule follows the boundary instead of
	// cutting through the blob's interior.
	dir := 0
	for i, d := range fourDirections {
		if !h.IsBlob(edge.Angle+d[0], edge.R+d[1]) {
			dir = (i + 1) % 4
			break
		}
	}
	for len(pts) < MaxContourLength {
		moved := false
		for turn := 0; turn < 4; turn++ {
			d := fourDirections[(dir+3+turn)%4] // left-turn-first
			next := Point{Angle: cur.Angle + d[0], R: cur.R + d[1]}
			if h.IsBlob(next.Angle, next.R) {
				cur = next
				dir = (dir + 3 + turn) % 4
				moved = true
				break
			}
		}
		if !moved || cur == edge {
			break
		}
		pts = append(pts, cur)
	}
	if len(pts) < MinContourLength {
		return pts, false
	}
	return pts, true
}

// Bounds returns the min/max angle and radius spanned by a contour.
func Bounds(pts []Point) (minAngle, maxAngle, minR, maxR int) {
	if len(pts) == 0 {
		return 0, 0, 0, 0
	}
	minAngle, maxAngle = pts[0].Angle, pts[0].Angle
	minR, maxR = pts[0].R, pts[0].R
	for _, p := range pts[1:] {
		if p.Angle < minAngle {
			minAngle = p.Angle
		}
		if p.Angle > maxAngle {
			maxAngle = p.Angle
		}
		if p.R < minR {
			minR = p.R
		}
		if p.R > maxR {
			maxR = p.R
		}
	}
	return
}
