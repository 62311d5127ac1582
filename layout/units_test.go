package layout

import (
	"math"
	"testing"
)

// TestPtPxRoundTrip 验证 pt↔px 换算的往返精度（允许极小的浮点误差）。
func TestPtPxRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 86.4, 144, 1000}
	for _, px := range samples {
		back := ToPx(ToPt(px))
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%g back=%g diff=%g", px, back, diff)
		}
	}
	if got := ToPt(25.4); math.Abs(got-72) > 1e-9 {
		t.Fatalf("25.4px 应为 72pt，实际 %g", got)
	}
}
