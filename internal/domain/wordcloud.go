package domain

import (
	"regexp"
	"sort"
	"strings"
)

// MaxCloudWords caps the number of words in the cloud.
const MaxCloudWords = 200

// WordWeight is one word of the cloud. Weight is relative to the most frequent word (1.0).
type WordWeight struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// WordCloud is the free-text block built from the Details column.
type WordCloud struct {
	Words []WordWeight `json:"words"`
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_']+`)

// BuildWordCloud tokenizes the space-joined Details of v and weights words by
// frequency. It returns a *MissingColumnError when the dataset has no Details
// column and ErrNoWords when the text holds nothing but stopwords.
func BuildWordCloud(v *FilteredView) (WordCloud, error) {
	wc := WordCloud{Words: make([]WordWeight, 0)}
	if v.Empty() {
		return wc, nil
	}
	if !v.HasDetails {
		return wc, &MissingColumnError{Column: ColDetails}
	}

	parts := make([]string, 0, v.Len())
	for i := range v.Records {
		if d := v.Records[i].Details; d != "" {
			parts = append(parts, d)
		}
	}

	counts, order := countWords(strings.Join(parts, " "))
	if len(order) == 0 {
		return wc, ErrNoWords
	}
	foldPlurals(counts, &order)

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > MaxCloudWords {
		order = order[:MaxCloudWords]
	}
	top := float64(counts[order[0]])
	for _, w := range order {
		wc.Words = append(wc.Words, WordWeight{Word: w, Count: counts[w], Weight: float64(counts[w]) / top})
	}
	return wc, nil
}

// countWords returns lower-cased token frequencies and first-seen order,
// dropping stopwords, bare numbers and possessive suffixes.
func countWords(text string) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		w := strings.ToLower(tok)
		w = strings.TrimSuffix(w, "'s")
		w = strings.Trim(w, "'")
		if len([]rune(w)) < 2 || isNumber(w) {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}
	return counts, order
}

// foldPlurals merges "words" into "word" when both occur.
func foldPlurals(counts map[string]int, order *[]string) {
	kept := (*order)[:0]
	for _, w := range *order {
		if strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			singular := strings.TrimSuffix(w, "s")
			if _, ok := counts[singular]; ok {
				counts[singular] += counts[w]
				delete(counts, w)
				continue
			}
		}
		kept = append(kept, w)
	}
	*order = kept
}

func isNumber(w string) bool {
	for _, r := range w {
		if (r < '0' || r > '9') && r != '\'' {
			return false
		}
	}
	return true
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
a about above after again against all also am an and any are aren't as at
be because been before being below between both but by
can can't cannot com could couldn't
did didn't do does doesn't doing don't down during
each else ever few for from further
get had hadn't has hasn't have haven't having he he'd he'll he's hence her here here's hers herself him himself his how how's however http
i i'd i'll i'm i've if in into is isn't it it's its itself just k
let's like me more most mustn't my myself
no nor not of off on once only or other otherwise ought our ours ourselves out over own
r same shall shan't she she'd she'll she's should shouldn't since so some such
than that that's the their theirs them themselves then there there's therefore these they they'd they'll they're they've this those through to too
under until up very
was wasn't we we'd we'll we're we've were weren't what what's when when's where where's which while who who's whom why why's with won't would wouldn't www
you you'd you'll you're you've your yours yourself yourselves`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
