package parcel

import "github.com/paulmach/orb"

// LineMerge joins the parts of mls that share endpoints into as few lines as
// possible, reversing parts when needed. Parts are consumed in order, so two
// touching segments come back as one line running from the first into the
// second. Empty parts are dropped.
func LineMerge(mls orb.MultiLineString) []orb.LineString {
	var pending []orb.LineString
	for _, ls := range mls {
		if len(ls) > 0 {
			pending = append(pending, ls)
		}
	}

	var out []orb.LineString
	for len(pending) > 0 {
		cur := append(orb.LineString(nil), pending[0]...)
		pending = pending[1:]

		for joined := true; joined; {
			joined = false
			for i, next := range pending {
				head, tail := cur[0], cur[len(cur)-1]
				switch {
				case tail.Equal(next[0]):
					cur = append(cur, next[1:]...)
				case tail.Equal(next[len(next)-1]):
					cur = append(cur, reversed(next)[1:]...)
				case head.Equal(next[len(next)-1]):
					cur = append(append(orb.LineString(nil), next[:len(next)-1]...), cur...)
				case head.Equal(next[0]):
					cur = append(reversed(next)[:len(next)-1], cur...)
				default:
					continue
				}
				pending = append(pending[:i], pending[i+1:]...)
				joined = true
				break
			}
		}
		out = append(out, cur)
	}
	return out
}

func reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
