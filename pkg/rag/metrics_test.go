package rag

import "testing"

func TestComputeMetrics_IdenticalTextScoresMaximally(t *testing.T) {
	m := ComputeMetrics("the quick brown fox", "the quick brown fox")

	if m.BLEU < 0.99 {
		t.Errorf("BLEU = %f, want ~1.0 for identical text", m.BLEU)
	}
	if m.ROUGELF1 < 0.99 {
		t.Errorf("ROUGELF1 = %f, want ~1.0 for identical text", m.ROUGELF1)
	}
}

func TestComputeMetrics_DisjointTextScoresZero(t *testing.T) {
	m := ComputeMetrics("alpha beta gamma", "delta epsilon zeta")

	if m.BLEU != 0 {
		t.Errorf("BLEU = %f, want 0 for disjoint text", m.BLEU)
	}
	if m.ROUGELF1 != 0 {
		t.Errorf("ROUGELF1 = %f, want 0 for disjoint text", m.ROUGELF1)
	}
}

func TestComputeMetrics_EmptyActualYieldsZero(t *testing.T) {
	m := ComputeMetrics("some expected text", "")
	if m.BLEU != 0 || m.ROUGELF1 != 0 {
		t.Errorf("expected zero scores for empty actual, got %+v", m)
	}
}

func TestMeteorScore_FallsBackOnNoMatches(t *testing.T) {
	score := meteorScore([]string{"alpha", "beta"}, []string{"gamma", "delta"})
	if score != 0 {
		t.Errorf("meteorScore = %f, want 0 for fully disjoint tokens", score)
	}
}

func TestSymmetricTokenOverlap_PartialOverlap(t *testing.T) {
	score := symmetricTokenOverlap([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	want := 2 * 2.0 / (3 + 3)
	if score != want {
		t.Errorf("symmetricTokenOverlap = %f, want %f", score, want)
	}
}

func TestLCSLength_ComputesLongestCommonSubsequence(t *testing.T) {
	got := lcsLength([]string{"a", "b", "c", "d"}, []string{"a", "c", "d"})
	if got != 3 {
		t.Errorf("lcsLength = %d, want 3", got)
	}
}
