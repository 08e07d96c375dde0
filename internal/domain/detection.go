package domain

// BoundingBox задаёт прямоугольник объекта на изображении.
// Порядок x1<=x2, y1<=y2 ожидается, но не проверяется.
type BoundingBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// Detection — объект, найденный детектором на изображении.
type Detection struct {
	Box        BoundingBox
	Confidence float64 // [0, 1]
}

func NewDetection(box BoundingBox, confidence float64) Detection {
	return Detection{Box: box, Confidence: confidence}
}

// BoxFromSlice строит BoundingBox из [x1, y1, x2, y2].
func BoxFromSlice(v []float64) (BoundingBox, bool) {
	if len(v) != 4 {
		return BoundingBox{}, false
	}

	return BoundingBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, true
}
