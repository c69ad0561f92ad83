package domain

import "math"

const colorLightness = 50

// EmbedColor returns the embed color for a kind/rating pair. The hue comes from the
// kind and the saturation from the rating, so stronger tiers look more vivid.
func EmbedColor(kind Kind, rating Rating) int {
	saturation := 100.0
	if rating != "" {
		saturation = rating.saturation()
	}
	return hslToRGB(kind.hue(), saturation, colorLightness)
}

// hslToRGB converts HSL (h in degrees, s and l in percent) to a 0xRRGGBB integer.
func hslToRGB(h, s, l float64) int {
	s /= 100
	l /= 100
	a := s * math.Min(l, 1-l)

	channel := func(n float64) int {
		k := math.Mod(n+h/30, 12)
		v := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(math.Round(v * 255))
	}

	return channel(0)<<16 | channel(8)<<8 | channel(4)
}
