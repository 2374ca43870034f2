package fit

import (
	"testing"

	"github.com/mmcdole/sleeve/internal/domain"
)

func TestComputeFit(t *testing.T) {
	tests := []struct {
		name                  string
		cols, rows, vis, meta int
		want                  domain.SizeFit
	}{
		{
			name: "height limited",
			cols: 200, rows: 40, vis: 5, meta: 4,
			want: domain.SizeFit{Width: 56, Height: 28},
		},
		{
			name: "width clamped",
			cols: 60, rows: 60, vis: 0, meta: 0,
			want: domain.SizeFit{Width: 60, Height: 30},
		},
		{
			name: "odd terminal width clamped then made even",
			cols: 61, rows: 60, vis: 0, meta: 0,
			want: domain.SizeFit{Width: 60, Height: 30},
		},
		{
			name: "no room left",
			cols: 80, rows: 12, vis: 5, meta: 4,
			want: domain.SizeFit{},
		},
		{
			name: "single free row",
			cols: 80, rows: 13, vis: 5, meta: 4,
			want: domain.SizeFit{Width: 2, Height: 1},
		},
		{
			name: "zero width terminal",
			cols: 0, rows: 40, vis: 0, meta: 0,
			want: domain.SizeFit{},
		},
		{
			name: "one column terminal",
			cols: 1, rows: 40, vis: 0, meta: 0,
			want: domain.SizeFit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFit(tt.cols, tt.rows, tt.vis, tt.meta)
			if got != tt.want {
				t.Errorf("ComputeFit(%d, %d, %d, %d) = %+v, want %+v",
					tt.cols, tt.rows, tt.vis, tt.meta, got, tt.want)
			}
		})
	}
}

func TestComputeFit_Properties(t *testing.T) {
	for cols := 2; cols <= 160; cols++ {
		for rows := 1; rows <= 80; rows++ {
			for _, reserve := range [][2]int{{0, 0}, {5, 4}, {10, 2}} {
				vis, meta := reserve[0], reserve[1]
				free := rows - (vis + meta + TimeRowHeight + HeightMargin)
				if free < 1 {
					continue
				}

				got := ComputeFit(cols, rows, vis, meta)

				if got.Width > cols {
					t.Fatalf("(%d,%d,%d,%d): width %d exceeds columns", cols, rows, vis, meta, got.Width)
				}
				if got.Width%2 != 0 {
					t.Fatalf("(%d,%d,%d,%d): width %d is odd", cols, rows, vis, meta, got.Width)
				}
				if 2*free <= cols {
					if got.Height != free || got.Width != 2*free {
						t.Fatalf("(%d,%d,%d,%d): unclamped fit %+v, want %dx%d",
							cols, rows, vis, meta, got, 2*free, free)
					}
				} else if got.Height != cols/2 {
					t.Fatalf("(%d,%d,%d,%d): clamped height %d, want %d",
						cols, rows, vis, meta, got.Height, cols/2)
				}

				if again := ComputeFit(cols, rows, vis, meta); again != got {
					t.Fatalf("ComputeFit is not deterministic: %+v then %+v", got, again)
				}
			}
		}
	}
}
