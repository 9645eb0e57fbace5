package render

import (
	"testing"

	"github.com/gogpu/gx"
)

func TestImageCommandPlace(t *testing.T) {
	tests := []struct {
		name string
		cmd  ImageCommand
		want Placement
	}{
		{
			name: "position only",
			cmd:  ImageCommand{SX: 10, SY: 20},
			want: Placement{View: gx.R(0, 0, 64, 32), Dest: gx.Pt(10, 20), Width: 64, Height: 32},
		},
		{
			name: "position with visible size",
			cmd:  ImageCommand{SX: 10, SY: 20, SW: 16, SH: 8, HasSize: true},
			want: Placement{View: gx.R(0, 0, 16, 8), Dest: gx.Pt(10, 20), Width: 16, Height: 8},
		},
		{
			name: "source into destination",
			cmd: ImageCommand{
				SX: 4, SY: 2, SW: 16, SH: 8, HasSize: true,
				DX: 100, DY: 50, DW: 32, DH: 16, HasDest: true,
			},
			want: Placement{View: gx.R(4, 2, 16, 8), Dest: gx.Pt(100, 50), Width: 32, Height: 16},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Place(64, 32); got != tt.want {
				t.Errorf("Place() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnap(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{9.99999, 10},
		{10.4, 10},
		{-1.5, -1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Snap(tt.in); got != tt.want {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	s := Stats{DrawCalls: 2, DrawnImages: 10}
	if s.String() != "Frame[2 draw calls, 10 images]" {
		t.Errorf("String() = %q", s.String())
	}
	s.Reset()
	if s != (Stats{}) {
		t.Error("Reset should zero counters")
	}
}
