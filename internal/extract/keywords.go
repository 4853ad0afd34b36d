package extract

import "regexp"

var wordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)

// stopWords are common English words of four or more letters that carry
// no topical signal.
var stopWords = toSet(
	"about", "above", "after", "again", "against", "almost", "alone", "along",
	"already", "also", "although", "always", "among", "amongst", "another",
	"anyhow", "anyone", "anything", "anyway", "anywhere", "around", "back",
	"became", "because", "become", "becomes", "been", "before", "beforehand",
	"behind", "being", "below", "beside", "besides", "between", "beyond",
	"both", "bottom", "call", "cannot", "could", "does", "doing", "done",
	"down", "during", "each", "either", "else", "elsewhere", "empty", "enough",
	"even", "ever", "every", "everyone", "everything", "everywhere", "except",
	"few", "fifteen", "fifty", "first", "five", "former", "formerly", "forty",
	"four", "from", "front", "full", "further", "give", "going", "have",
	"having", "hence", "here", "hereafter", "hereby", "herein", "hers",
	"herself", "himself", "however", "hundred", "indeed", "into", "itself",
	"just", "keep", "last", "latter", "least", "less", "made", "make", "many",
	"more", "moreover", "most", "mostly", "move", "much", "must", "myself",
	"name", "namely", "neither", "never", "nevertheless", "next", "nine",
	"nobody", "none", "noone", "nothing", "now", "nowhere", "often", "once",
	"only", "onto", "other", "others", "otherwise", "ours", "ourselves",
	"over", "part", "perhaps", "please", "quite", "rather", "really", "regarding",
	"same", "says", "seem", "seemed", "seeming", "seems", "serious", "several",
	"should", "show", "side", "since", "sixty", "some", "somehow", "someone",
	"something", "sometime", "sometimes", "somewhere", "still", "such", "take",
	"than", "that", "their", "them", "themselves", "then", "thence", "there",
	"thereafter", "thereby", "therefore", "therein", "thereupon", "these",
	"they", "third", "this", "those", "though", "three", "through",
	"throughout", "thru", "thus", "together", "too", "toward", "towards",
	"twelve", "twenty", "under", "unless", "until", "upon", "used", "using",
	"various", "very", "well", "were", "what", "whatever", "when", "whence",
	"whenever", "where", "whereafter", "whereas", "whereby", "wherein",
	"whereupon", "wherever", "whether", "which", "while", "whither", "whoever",
	"whole", "whom", "whose", "will", "with", "within", "without", "would",
	"yourself", "yourselves", "your", "yours",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Words returns the candidate keywords of already case-folded text: runs
// of four or more ASCII letters that are not stop words.
func Words(folded string) []string {
	var out []string
	for _, w := range wordRe.FindAllString(folded, -1) {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// IsStopWord reports whether w is ignored by keyword extraction.
func IsStopWord(w string) bool { return stopWords[w] }
