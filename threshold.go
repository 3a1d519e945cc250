package enhance

// AdaptiveThreshold binarizes pix against a locally blurred version of
// itself, typically produced by Blur. A pixel becomes white (255) when its
// value exceeds the local threshold blurred[i]-offset, black (0)
// otherwise; invert swaps the two. Both buffers must share the same
// dimensions.
func AdaptiveThreshold(pix, blurred []byte, width, height int, offset int, invert bool) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	if err := validateImage(blurred, width, height); err != nil {
		return nil, err
	}

	out := make([]byte, width*height)

	for i := range pix {
		above := int(pix[i]) > int(blurred[i])-offset

		if above != invert {
			out[i] = 255
		}
	}

	return out, nil
}
