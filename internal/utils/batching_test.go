package utils

import "testing"

func TestChunks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, size int
		want    []int
	}{
		{n: 0, size: 3, want: nil},
		{n: 5, size: 0, want: nil},
		{n: 5, size: 2, want: []int{2, 2, 1}},
		{n: 64, size: 32, want: []int{32, 32}},
		{n: 3, size: 10, want: []int{3}},
	}
	for _, tt := range tests {
		items := make([]int, tt.n)
		got := Chunks(items, tt.size)
		if len(got) != len(tt.want) {
			t.Fatalf("Chunks(%d, %d) = %d chunks, want %d", tt.n, tt.size, len(got), len(tt.want))
		}
		for i, c := range got {
			if len(c) != tt.want[i] {
				t.Errorf("Chunks(%d, %d)[%d] len = %d, want %d", tt.n, tt.size, i, len(c), tt.want[i])
			}
		}
	}
}
