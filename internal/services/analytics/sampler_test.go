package analytics

import "testing"

func TestPosteriorModeEarliestIndexWinsTies(t *testing.T) {
	st := newChainStats(12)
	st.counts[4] = 5
	st.counts[6] = 3
	st.counts[9] = 5
	st.total = 13

	if got := st.mode(2, 10); got != 4 {
		t.Fatalf("tied counts must resolve to the earliest index, got %d", got)
	}

	st.counts[9] = 6
	if got := st.mode(2, 10); got != 9 {
		t.Fatalf("strictly higher count must win, got %d", got)
	}
}

func TestPosteriorModeEmptyRange(t *testing.T) {
	st := newChainStats(10)
	st.counts[1] = 4
	st.total = 4

	if got := st.mode(3, 7); got != -1 {
		t.Fatalf("expected -1 when no draws land in range, got %d", got)
	}
}
