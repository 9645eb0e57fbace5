package main

import (
	"testing"

	"github.com/gogpu/gx/gpu/gputest"
)

func TestRun(t *testing.T) {
	for _, sorting := range []bool{true, false} {
		dev := gputest.NewDefault()
		if err := run(dev, 3, 20, 2, sorting, 320, 240); err != nil {
			t.Fatalf("run(sorting=%v): %v", sorting, err)
		}
		if len(dev.Draws) == 0 {
			t.Errorf("run(sorting=%v) issued no draws", sorting)
		}
	}
}
