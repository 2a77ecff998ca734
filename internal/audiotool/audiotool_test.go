package audiotool

import "testing"

func TestParseSilenceDetectAscendingPairs(t *testing.T) {
	output := `
[silencedetect @ 0x1] silence_start: 10.5
[silencedetect @ 0x1] silence_end: 11.2 | silence_duration: 0.7
[silencedetect @ 0x1] silence_start: 40
[silencedetect @ 0x1] silence_end: 40.5 | silence_duration: 0.5
`
	ranges := parseSilenceDetect(output)
	if len(ranges) != 2 {
		t.Fatalf("len(ranges) = %d, want 2", len(ranges))
	}
	if ranges[0].Start != 10.5 || ranges[0].End != 11.2 {
		t.Errorf("ranges[0] = %+v, want [10.5, 11.2]", ranges[0])
	}
	if ranges[1].Start != 40 || ranges[1].End != 40.5 {
		t.Errorf("ranges[1] = %+v, want [40, 40.5]", ranges[1])
	}
}

func TestParseSilenceDetectIgnoresUnmatchedStart(t *testing.T) {
	output := "[silencedetect @ 0x1] silence_start: 5\n"
	ranges := parseSilenceDetect(output)
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges without a matching silence_end, got %v", ranges)
	}
}

func TestFingerprintFromAstatsHashesEachWindow(t *testing.T) {
	output := []byte(`[Parsed_astats_0 @ 0x1] Overall
    RMS level dB: -20
[Parsed_astats_0 @ 0x1] Overall
    RMS level dB: -18
`)
	stream := fingerprintFromAstats(output)
	if len(stream) != 2 {
		t.Fatalf("len(stream) = %d, want 2", len(stream))
	}
	if stream[0] == stream[1] {
		t.Error("distinct windows should not hash to the same fingerprint point")
	}
}
