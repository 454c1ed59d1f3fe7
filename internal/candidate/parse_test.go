package candidate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Candidate
		wantOK bool
	}{
		{
			name:   "ordinal entry",
			line:   "1. Napa: 80%",
			want:   Candidate{Name: "Napa", Confidence: 80, Position: 1},
			wantOK: true,
		},
		{
			name:   "plain text",
			line:   "random text",
			wantOK: false,
		},
		{
			name:   "no ordinal defaults to position zero",
			line:   "Napa Extend: 65%",
			want:   Candidate{Name: "Napa Extend", Confidence: 65, Position: 0},
			wantOK: true,
		},
		{
			name:   "dosage suffix",
			line:   "2. Fusid 40mg: 70% - 1+0+0 after meal",
			want:   Candidate{Name: "Fusid 40mg", Confidence: 70, Position: 2, Dosage: "1+0+0 after meal"},
			wantOK: true,
		},
		{
			name:   "parenthesised dosage",
			line:   "3) Sergel: 90% (0+0+1)",
			want:   Candidate{Name: "Sergel", Confidence: 90, Position: 3, Dosage: "0+0+1"},
			wantOK: true,
		},
		{
			name:   "markdown emphasis and bullet",
			line:   "- 4. **Monas 10**: 55%",
			want:   Candidate{Name: "Monas 10", Confidence: 55, Position: 4},
			wantOK: true,
		},
		{
			name:   "confidence clamped",
			line:   "5. Ace: 120%",
			want:   Candidate{Name: "Ace", Confidence: 100, Position: 5},
			wantOK: true,
		},
		{
			name:   "empty name rejected",
			line:   "1. **: 80%",
			wantOK: false,
		},
		{
			name:   "header line without percentage",
			line:   "Medicines found:",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestScan(t *testing.T) {
	text := `Here is my reading of the prescription:

1. Napa: 80%
2. Seclo 20: 70%
Notes: the handwriting is hard to read
3. Fexo: 60%`

	t.Run("yields entries in line order", func(t *testing.T) {
		var names []string
		for c := range Scan(text) {
			names = append(names, c.Name)
		}
		want := []string{"Napa", "Seclo 20", "Fexo"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("restartable", func(t *testing.T) {
		seq := Scan(text)
		first, second := 0, 0
		for range seq {
			first++
		}
		for range seq {
			second++
		}
		if first != 3 || second != 3 {
			t.Errorf("counts = %d, %d, want 3, 3", first, second)
		}
	})

	t.Run("early stop", func(t *testing.T) {
		count := 0
		for range Scan(text) {
			count++
			break
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		for c := range Scan("") {
			t.Errorf("unexpected candidate %+v", c)
		}
	})
}

func TestParseAll(t *testing.T) {
	passes := []string{
		"1. Paracetamol: 85%",
		"1. Paracetamol: 85%\nrandom text",
		"",
	}

	got := ParseAll(passes)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, c := range got {
		if c.Position != 1 || c.Name != "Paracetamol" {
			t.Errorf("unexpected candidate %+v", c)
		}
	}

	if got := ParseAll(nil); len(got) != 0 {
		t.Errorf("ParseAll(nil) = %v, want empty", got)
	}
}

func TestCandidateString(t *testing.T) {
	c := Candidate{Name: "Napa", Confidence: 80}
	if got := c.String(); got != "Napa: 80%" {
		t.Errorf("String() = %q", got)
	}
}
