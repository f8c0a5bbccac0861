package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/service/chunker"
)

func reconstruct(chunks []model.Chunk, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c.Text)
			continue
		}
		sb.WriteString(string([]rune(c.Text)[overlap:]))
	}
	return sb.String()
}

func sampleText(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		fmt.Fprintf(&sb, "Rule %d: SAVE%d applies to carts over $%d. ", i, i%50, i*3)
	}
	return sb.String()[:n]
}

func TestChunker_Reconstruction(t *testing.T) {
	windows := []struct{ size, overlap int }{
		{1000, 200},
		{10, 0},
		{10, 9},
		{7, 3},
		{1, 0},
		{64, 63},
		{500, 499},
	}
	lengths := []int{1, 9, 10, 11, 999, 1000, 1001, 2345}

	for _, w := range windows {
		for _, n := range lengths {
			t.Run(fmt.Sprintf("W=%d/O=%d/len=%d", w.size, w.overlap, n), func(t *testing.T) {
				c, err := chunker.New(chunker.WithChunkSize(w.size), chunker.WithOverlap(w.overlap))
				gt.NoError(t, err).Required()

				text := sampleText(n)
				chunks := c.Split(text)
				gt.Value(t, reconstruct(chunks, w.overlap)).Equal(text)

				for i, chunk := range chunks {
					gt.Value(t, chunk.SequenceIndex).Equal(i)
					gt.Bool(t, len([]rune(chunk.Text)) <= w.size).True()
				}
			})
		}
	}
}

func TestChunker_Split(t *testing.T) {
	c, err := chunker.New()
	gt.NoError(t, err).Required()

	t.Run("empty input yields no chunks", func(t *testing.T) {
		gt.Array(t, c.Split("")).Length(0)
	})

	t.Run("input shorter than the window yields one chunk", func(t *testing.T) {
		chunks := c.Split("SAVE15 gives 15% off")
		gt.Array(t, chunks).Length(1).Required()
		gt.Value(t, chunks[0].Text).Equal("SAVE15 gives 15% off")
	})

	t.Run("input exactly the window yields one chunk", func(t *testing.T) {
		gt.Array(t, c.Split(strings.Repeat("a", chunker.DefaultChunkSize))).Length(1)
	})

	t.Run("neighbours share the overlap", func(t *testing.T) {
		chunks := c.Split(sampleText(2500))
		gt.Array(t, chunks).Length(3).Required()
		for i := 1; i < len(chunks); i++ {
			prev := []rune(chunks[i-1].Text)
			cur := []rune(chunks[i].Text)
			gt.Value(t, string(cur[:chunker.DefaultChunkOverlap])).Equal(string(prev[len(prev)-chunker.DefaultChunkOverlap:]))
			gt.Value(t, chunks[i].Start).Equal(chunks[i-1].Start + chunker.DefaultChunkSize - chunker.DefaultChunkOverlap)
		}
	})

	t.Run("multi-byte text is split on rune boundaries", func(t *testing.T) {
		small, err := chunker.New(chunker.WithChunkSize(4), chunker.WithOverlap(1))
		gt.NoError(t, err).Required()

		text := "割引コードは十五パーセント"
		chunks := small.Split(text)
		gt.Value(t, reconstruct(chunks, 1)).Equal(text)
		gt.Value(t, chunks[0].Text).Equal("割引コー")
	})

	t.Run("short substrings survive whole in some chunk", func(t *testing.T) {
		small, err := chunker.New(chunker.WithChunkSize(10), chunker.WithOverlap(4))
		gt.NoError(t, err).Required()

		text := sampleText(200)
		chunks := small.Split(text)
		runes := []rune(text)
		for start := 0; start+5 <= len(runes); start++ {
			needle := string(runes[start : start+5])
			found := false
			for _, c := range chunks {
				if strings.Contains(c.Text, needle) {
					found = true
					break
				}
			}
			gt.Bool(t, found).True()
		}
	})
}

func TestNew_InvalidWindow(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
		{"negative overlap", 10, -1},
		{"zero size", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chunker.New(chunker.WithChunkSize(tt.size), chunker.WithOverlap(tt.overlap))
			gt.Error(t, err).Is(chunker.ErrInvalidWindow)
		})
	}
}
