// Package lyrics annotates Japanese lyrics with furigana.
//
// Every line is split into morphemes; a morpheme whose surface contains a
// kanji gets its hiragana reading as ruby text. Repeated lines are folded
// into "line xN".
package lyrics

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'lyrics'
func tracer() tracing.Trace {
	return tracing.Select("lyrics")
}

// Morpheme is a token of a line with its reading, empty when unknown.
type Morpheme struct {
	Surface string
	Reading string
}

// Tokenizer splits a line into morphemes.
type Tokenizer interface {
	Tokenize(line string) []Morpheme
}

// Kagome tokenizes with the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome loads the IPA dictionary. Loading is expensive, callers keep
// the tokenizer around.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}
	tracer().Infof("kagome IPA dictionary loaded")
	return &Kagome{t: t}, nil
}

// Tokenize implements Tokenizer.
func (k *Kagome) Tokenize(line string) []Morpheme {
	tokens := k.t.Tokenize(line)
	ms := make([]Morpheme, 0, len(tokens))
	for _, tok := range tokens {
		m := Morpheme{Surface: tok.Surface}
		if r, ok := tok.Reading(); ok && r != "*" {
			m.Reading = r
		}
		ms = append(ms, m)
	}
	return ms
}

var (
	reKanji    = regexp.MustCompile(`[\x{4e00}-\x{9faf}]`)
	reKanaOnly = regexp.MustCompile(`^[\x{3040}-\x{30ff}]+$`)
)

// ToHiragana maps katakana (ァ..ヶ) onto hiragana and leaves other runes.
func ToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x30A1 && r <= 0x30F6 {
			return r - 0x60
		}
		return r
	}, s)
}

// Annotate returns the HTML of one line with ruby annotations.
func Annotate(tok Tokenizer, line string) string {
	var b strings.Builder
	for _, m := range tok.Tokenize(line) {
		reading := ToHiragana(m.Reading)
		if reading != "" && reKanji.MatchString(m.Surface) && !reKanaOnly.MatchString(m.Surface) && m.Surface != reading {
			fmt.Fprintf(&b, "<ruby>%s<rt>%s</rt></ruby>", html.EscapeString(m.Surface), html.EscapeString(reading))
			continue
		}
		b.WriteString(html.EscapeString(m.Surface))
	}
	return b.String()
}

// MergeDuplicates folds runs of identical adjacent lines into "line xN".
func MergeDuplicates(lines []string) []string {
	var merged []string
	for i := 0; i < len(lines); {
		j := i + 1
		for j < len(lines) && lines[j] == lines[i] {
			j++
		}
		if n := j - i; n > 1 {
			merged = append(merged, fmt.Sprintf("%s x%d", lines[i], n))
		} else {
			merged = append(merged, lines[i])
		}
		i = j
	}
	return merged
}

// Rendering holds both versions of the lyrics as HTML, lines separated by
// <br>.
type Rendering struct {
	Plain    string
	Furigana string
}

// Render prepares the plain and the furigana version of text.
func Render(tok Tokenizer, text string) Rendering {
	if strings.TrimSpace(text) == "" {
		return Rendering{}
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	plain := make([]string, len(lines))
	furigana := make([]string, len(lines))
	for i, l := range lines {
		plain[i] = html.EscapeString(l)
		furigana[i] = Annotate(tok, l)
	}
	return Rendering{
		Plain:    strings.Join(MergeDuplicates(plain), "<br>"),
		Furigana: strings.Join(MergeDuplicates(furigana), "<br>"),
	}
}
