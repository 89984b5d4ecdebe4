package keywords

import (
	"math"
	"sort"
	"strings"

	"github.com/mindfuljournal/analyzer/pkg/textclean"
)

const (
	DefaultTop            = 5
	DefaultMaxNgram       = 2
	DefaultWindowSize     = 1
	DefaultDedupThreshold = 0.9
)

// Options tunes the extractor.
type Options struct {
	// Top is the maximum number of keywords returned.
	Top int
	// MaxNgram is the maximum number of words in a keyword.
	MaxNgram int
	// WindowSize is how many preceding words count as co-occurring with a word.
	WindowSize int
	// DedupThreshold drops a keyword whose similarity ratio to an already selected keyword
	// exceeds it. Values >= 1 disable deduplication.
	DedupThreshold float64
}

func DefaultOptions() Options {
	return Options{
		Top:            DefaultTop,
		MaxNgram:       DefaultMaxNgram,
		WindowSize:     DefaultWindowSize,
		DedupThreshold: DefaultDedupThreshold,
	}
}

// Keyword is an extracted phrase. Lower scores rank higher.
type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// Extractor ranks candidate phrases of a single document using local statistical features
// only: term frequency, casing, position, spread across sentences and how many different
// words a term co-occurs with. It needs no training and is safe for concurrent use.
type Extractor struct {
	opts Options
}

func NewExtractor(opts Options) *Extractor {
	if opts.Top <= 0 {
		opts.Top = DefaultTop
	}
	if opts.MaxNgram <= 0 {
		opts.MaxNgram = DefaultMaxNgram
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = DefaultDedupThreshold
	}
	return &Extractor{opts: opts}
}

// Extract returns up to Top keywords of text, best first.
func (e *Extractor) Extract(text string) []Keyword {
	doc := newDocument(e.opts)
	doc.build(splitSentences(text))
	if !doc.scoreTerms() {
		return []Keyword{}
	}

	var candidates []*candidate
	for _, c := range doc.candidates {
		if c.valid() {
			c.score()
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].h < candidates[j].h })

	selected := make([]Keyword, 0, e.opts.Top)
	for _, c := range candidates {
		if len(selected) == e.opts.Top {
			break
		}
		if e.opts.DedupThreshold < 1 && duplicates(c.phrase, selected, e.opts.DedupThreshold) {
			continue
		}
		selected = append(selected, Keyword{Phrase: c.phrase, Score: c.h})
	}

	return selected
}

// Phrases returns only the keyword strings of Extract, in ranked order.
func (e *Extractor) Phrases(text string) []string {
	keywords := e.Extract(text)
	phrases := make([]string, len(keywords))
	for i, kw := range keywords {
		phrases[i] = kw.Phrase
	}
	return phrases
}

func duplicates(phrase string, selected []Keyword, threshold float64) bool {
	for _, kw := range selected {
		if similarity(phrase, kw.Phrase) > threshold {
			return true
		}
	}
	return false
}

// similarity is 2*LCS(a, b) / (len(a)+len(b)) over runes, the complement of the normalized
// insert/delete edit distance.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	return 2 * float64(prev[len(rb)]) / float64(total)
}

type term struct {
	id        int
	stopWord  bool
	tf        float64
	tfAcronym float64
	tfProper  float64
	sentences []int
	h         float64
}

type token struct {
	word string
	tag  byte
	term *term
}

type candidate struct {
	phrase    string
	terms     []*term
	tags      map[string]struct{}
	tf        float64
	edgeStops bool
	h         float64
}

// valid rejects phrases that start or end with a stop word and phrases that were only ever
// seen containing numbers or unusual tokens.
func (c *candidate) valid() bool {
	if c.edgeStops {
		return false
	}
	for tags := range c.tags {
		if !strings.ContainsAny(tags, string([]byte{tagDigit, tagUnusual})) {
			return true
		}
	}
	return false
}

func (c *candidate) score() {
	sum, prod := 0.0, 1.0
	for _, t := range c.terms {
		if t.stopWord {
			continue
		}
		sum += t.h
		prod *= t.h
	}
	c.h = prod / ((sum + 1) * c.tf)
}

type edge struct{ from, to int }

type document struct {
	opts       Options
	terms      map[string]*term
	termList   []*term
	cooccur    map[edge]float64
	candidates []*candidate
	byPhrase   map[string]*candidate
	sentences  int
}

func newDocument(opts Options) *document {
	return &document{
		opts:     opts,
		terms:    make(map[string]*term),
		cooccur:  make(map[edge]float64),
		byPhrase: make(map[string]*candidate),
	}
}

func (d *document) build(sentences [][]string) {
	d.sentences = len(sentences)

	for s, words := range sentences {
		var block []token
		for pos, word := range words {
			if isPunctuation(word) {
				block = nil
				continue
			}

			tag := tagOf(word, pos)
			t := d.term(word)
			t.occur(tag, s)

			if !discarded(tag) {
				for i := max(0, len(block)-d.opts.WindowSize); i < len(block); i++ {
					if !discarded(block[i].tag) {
						d.cooccur[edge{block[i].term.id, t.id}]++
					}
				}
			}

			block = append(block, token{word: word, tag: tag, term: t})
			for n := 1; n <= d.opts.MaxNgram && n <= len(block); n++ {
				d.addCandidate(block[len(block)-n:])
			}
		}
	}
}

func (d *document) term(word string) *term {
	lower := strings.ToLower(word)
	key := lower
	if len(key) > 3 && strings.HasSuffix(key, "s") {
		key = key[:len(key)-1]
	}
	if t, ok := d.terms[key]; ok {
		return t
	}

	letters := strings.Map(func(r rune) rune {
		if isPunctuation(string(r)) {
			return -1
		}
		return r
	}, key)

	t := &term{
		id: len(d.termList),
		stopWord: textclean.IsStopWord(lower) ||
			textclean.IsStopWord(key) ||
			len([]rune(letters)) < 3,
	}
	d.terms[key] = t
	d.termList = append(d.termList, t)
	return t
}

func (t *term) occur(tag byte, sentence int) {
	t.tf++
	switch tag {
	case tagAcronym:
		t.tfAcronym++
	case tagProper:
		t.tfProper++
	}
	if n := len(t.sentences); n == 0 || t.sentences[n-1] != sentence {
		t.sentences = append(t.sentences, sentence)
	}
}

func (d *document) addCandidate(tokens []token) {
	words := make([]string, len(tokens))
	tags := make([]byte, len(tokens))
	for i, tok := range tokens {
		words[i] = strings.ToLower(tok.word)
		tags[i] = tok.tag
	}
	phrase := strings.Join(words, " ")

	c, ok := d.byPhrase[phrase]
	if !ok {
		c = &candidate{
			phrase:    phrase,
			terms:     make([]*term, len(tokens)),
			tags:      make(map[string]struct{}),
			edgeStops: tokens[0].term.stopWord || tokens[len(tokens)-1].term.stopWord,
		}
		for i, tok := range tokens {
			c.terms[i] = tok.term
		}
		d.byPhrase[phrase] = c
		d.candidates = append(d.candidates, c)
	}
	c.tags[string(tags)] = struct{}{}
	c.tf++
}

// scoreTerms computes every term's weight. It reports false when the document has no term
// that is not a stop word.
func (d *document) scoreTerms() bool {
	var valid []float64
	maxTF := 0.0
	for _, t := range d.termList {
		maxTF = math.Max(maxTF, t.tf)
		if !t.stopWord {
			valid = append(valid, t.tf)
		}
	}
	if len(valid) == 0 {
		return false
	}

	mean, std := meanStd(valid)

	inDegree := make([]float64, len(d.termList))
	inWeight := make([]float64, len(d.termList))
	outDegree := make([]float64, len(d.termList))
	outWeight := make([]float64, len(d.termList))
	for e, w := range d.cooccur {
		outDegree[e.from]++
		outWeight[e.from] += w
		inDegree[e.to]++
		inWeight[e.to] += w
	}

	for _, t := range d.termList {
		left := ratio(inDegree[t.id], inWeight[t.id])
		right := ratio(outDegree[t.id], outWeight[t.id])

		relatedness := (0.5 + left*(t.tf/maxTF)) + (0.5 + right*(t.tf/maxTF))
		frequency := t.tf / (mean + std)
		spread := float64(len(t.sentences)) / float64(d.sentences)
		casing := math.Max(t.tfAcronym, t.tfProper) / (1 + math.Log(t.tf))
		position := math.Log(math.Log(3 + median(t.sentences)))

		t.h = (position * relatedness) / (casing + frequency/relatedness + spread/relatedness)
	}

	return true
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// median of an ascending slice.
func median(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
