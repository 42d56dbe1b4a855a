package trim

// RegularGrid produces the 2*quadU*quadV triangle index buffer for a
// uCount x vCount grid (row-major, U fastest), with wrap flags
// modulating the "next" index so a closed axis stitches back to index 0
// instead of running off the end.
func RegularGrid(uCount, vCount int, wrapU, wrapV bool) []int {
	if wrapU {
		uCount = maxInt(uCount, 3)
	} else {
		uCount = maxInt(uCount, 2)
	}
	if wrapV {
		vCount = maxInt(vCount, 3)
	} else {
		vCount = maxInt(vCount, 2)
	}

	quadU := uCount
	if !wrapU {
		quadU = uCount - 1
	}
	quadV := vCount
	if !wrapV {
		quadV = vCount - 1
	}

	indices := make([]int, 0, quadU*quadV*6)
	stride := uCount

	for v := 0; v < quadV; v++ {
		v0 := v
		v1 := v + 1
		if wrapV {
			v1 = (v + 1) % vCount
		}

		for u := 0; u < quadU; u++ {
			u0 := u
			u1 := u + 1
			if wrapU {
				u1 = (u + 1) % uCount
			}

			i0 := v0*stride + u0
			i1 := v0*stride + u1
			i2 := v1*stride + u0
			i3 := v1*stride + u1

			indices = append(indices, i0, i1, i2)
			indices = append(indices, i2, i1, i3)
		}
	}

	return indices
}
