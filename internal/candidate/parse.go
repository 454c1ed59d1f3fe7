package candidate

import (
	"bufio"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// linePattern is the canonical entry grammar shared by every pipeline mode:
//
//	[bullet] [ordinal ("." | ")")] name ":" confidence "%" [dosage]
//
// The ordinal is optional; entries without one land at position 0.
var linePattern = regexp.MustCompile(`^\s*(?:[-*•]\s+)?(?:(\d+)\s*[.)]\s*)?(.+?)\s*:\s*(\d{1,4})\s*%(.*)$`)

// emphasis strips markdown decoration models like to put around names.
var emphasis = strings.NewReplacer("**", "", "__", "", "`", "")

// ParseLine parses a single line. ok is false when the line is not an entry.
func ParseLine(line string) (c Candidate, ok bool) {
	match := linePattern.FindStringSubmatch(line)
	if match == nil {
		return Candidate{}, false
	}

	name := cleanName(match[2])
	if name == "" {
		return Candidate{}, false
	}

	confidence, err := strconv.Atoi(match[3])
	if err != nil {
		return Candidate{}, false
	}

	position := 0
	if match[1] != "" {
		if p, err := strconv.Atoi(match[1]); err == nil {
			position = p
		}
	}

	return Candidate{
		Name:       name,
		Confidence: clampConfidence(confidence),
		Position:   position,
		Dosage:     cleanDosage(match[4]),
	}, true
}

// Scan yields every candidate found in text, in line order.
// The sequence is lazy and can be ranged over any number of times.
func Scan(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		scanner := bufio.NewScanner(strings.NewReader(text))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			c, ok := ParseLine(scanner.Text())
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// ParseAll collects the candidates from every text, preserving text order
// and then line order.
func ParseAll(texts []string) []Candidate {
	var out []Candidate
	for _, text := range texts {
		for c := range Scan(text) {
			out = append(out, c)
		}
	}
	return out
}

func cleanName(raw string) string {
	name := emphasis.Replace(raw)
	name = strings.Trim(name, " \t*_-")
	return strings.TrimSpace(name)
}

func cleanDosage(raw string) string {
	d := emphasis.Replace(raw)
	d = strings.TrimLeft(d, "-–—,;:| \t")
	if strings.HasPrefix(d, "(") && strings.HasSuffix(d, ")") {
		d = d[1 : len(d)-1]
	}
	return strings.TrimSpace(d)
}
