package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTermLength is the shortest cleaned term worth sending to any source
const minTermLength = 4

// QueryPreprocessor turns raw OCR/LLM menu text into candidate search terms
type QueryPreprocessor struct {
	enableDebugLogging bool
	aliases            map[string]string
	aliasPatterns      []aliasPattern
	blacklist          map[string]bool
}

type aliasPattern struct {
	re        *regexp.Regexp
	canonical string
}

// Compiled regex patterns for query preprocessing
var (
	// "w/" shorthand for "with", also glued to the next word ("w/fresh")
	withShorthandPattern = regexp.MustCompile(`\bw/\s*`)

	// Menu choices: "Soup | Salad", "Chicken/Beef", "tea or coffee"
	choiceDelimiterPattern = regexp.MustCompile(`\s*(?:\||/|\bor\b)\s*`)

	// Combinations that may also be one dish: "fish & chips", "mac and cheese"
	conjunctionDelimiterPattern = regexp.MustCompile(`\s*(?:&|\band\b)\s*`)

	// Prices and bare numbers: "$12.99", "12", "3.50"
	pricePattern = regexp.MustCompile(`\$?\d+(\.\d{2})?`)

	// Anything other than letters (any script), spaces, hyphens and apostrophes
	nonFoodCharPattern = regexp.MustCompile(`[^\p{L}\p{M}\s'-]+`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)

	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// descriptivePrefixes are stripped from the start of a fragment, longest first
var descriptivePrefixes = sortedByLength([]string{
	"with", "w", "fresh", "served with", "topped with", "choice of", "your choice of",
	"side of", "a side of", "add", "extra", "homemade", "house made", "house-made",
	"housemade", "our famous", "famous", "classic", "traditional", "signature",
	"the", "a", "an", "served", "topped", "made with", "freshly made", "daily",
})

// fillerSuffixes are stripped from the end of a fragment, longest first
var fillerSuffixes = sortedByLength([]string{
	"of the day", "special", "combo", "platter", "entree", "basket", "to go",
	"plate", "served", "on the side", "style",
})

// defaultAliases maps regional and OCR-garbled names to canonical English foods
var defaultAliases = map[string]string{
	"crostatine":            "tart",
	"crostatina":            "tart",
	"crostata":              "tart",
	"tiramisu tradizionale": "tiramisu",
	"tiramisu della casa":   "tiramisu",
	"pollo":                 "chicken",
	"pollo arrosto":         "roasted chicken",
	"manzo":                 "beef",
	"maiale":                "pork",
	"gamberi":               "shrimp",
	"gamberetti":            "shrimp",
	"salmone":               "salmon",
	"tonno":                 "tuna",
	"insalata":              "salad",
	"patate":                "potatoes",
	"patatine fritte":       "french fries",
	"frites":                "french fries",
	"pommes frites":         "french fries",
	"formaggio":             "cheese",
	"fromage":               "cheese",
	"gelato artigianale":    "gelato",
	"panna cotta":           "custard",
	"poulet":                "chicken",
	"boeuf":                 "beef",
	"cheddr":                "cheddar",
	"chedar":                "cheddar",
	"chiken":                "chicken",
	"chikcen":               "chicken",
	"brocoli":               "broccoli",
	"brocolli":              "broccoli",
	"spagetti":              "spaghetti",
	"expresso":              "espresso",
	"cappucino":             "cappuccino",
	"hamburguesa":           "hamburger",
	"queso":                 "cheese",
	"frijoles":              "beans",
	"arroz":                 "rice",
}

// defaultBlacklist holds OCR fragments that look like words but never are food
var defaultBlacklist = []string{
	"ddar", "chedd", "eddar", "menu", "price", "prices", "item", "items",
	"each", "daily", "total", "order", "served", "choice", "add on", "add-on",
	"includes", "sides", "side", "gluten", "vegan", "spicy", "market price",
	"lorem", "ipsum", "null", "none", "undefined", "n-a",
}

// NewQueryPreprocessor creates a new query preprocessor with the built-in alias table
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	p := &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
		aliases:            make(map[string]string, len(defaultAliases)),
		blacklist:          make(map[string]bool, len(defaultBlacklist)),
	}
	for variant, canonical := range defaultAliases {
		p.aliases[variant] = canonical
	}
	for _, junk := range defaultBlacklist {
		p.blacklist[junk] = true
	}
	p.compileAliases()
	return p
}

// AddAliases merges extra alias and blacklist entries over the built-in tables
func (p *QueryPreprocessor) AddAliases(aliases map[string]string, blacklist []string) {
	for variant, canonical := range aliases {
		variant = foldText(variant)
		canonical = foldText(canonical)
		if variant == "" || canonical == "" {
			continue
		}
		p.aliases[variant] = canonical
	}
	for _, junk := range blacklist {
		if junk = foldText(junk); junk != "" {
			p.blacklist[junk] = true
		}
	}
	p.compileAliases()
}

func (p *QueryPreprocessor) compileAliases() {
	variants := make([]string, 0, len(p.aliases))
	for v := range p.aliases {
		variants = append(variants, v)
	}
	variants = sortedByLength(variants)

	p.aliasPatterns = p.aliasPatterns[:0]
	for _, v := range variants {
		p.aliasPatterns = append(p.aliasPatterns, aliasPattern{
			re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`),
			canonical: p.aliases[v],
		})
	}
}

// Normalize returns the candidate search terms for a raw menu string, longest
// (most specific) first. The result is empty when nothing usable survives.
func (p *QueryPreprocessor) Normalize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := foldText(raw)
	text = withShorthandPattern.ReplaceAllString(text, "with ")

	var fragments []string
	for _, choice := range choiceDelimiterPattern.Split(text, -1) {
		parts := conjunctionDelimiterPattern.Split(choice, -1)
		if len(parts) > 1 {
			// The whole phrase may itself be a dish name.
			fragments = append(fragments, choice)
		}
		fragments = append(fragments, parts...)
	}

	seen := make(map[string]bool, len(fragments))
	var terms []string
	for _, fragment := range fragments {
		term := p.cleanFragment(fragment)
		if !p.isValidTerm(term) || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return utf8.RuneCountInString(terms[i]) > utf8.RuneCountInString(terms[j])
	})

	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] Input: %q -> Terms: %q", raw, terms)
	}

	return terms
}

// cleanFragment applies price stripping, character cleanup, prefix/suffix
// stripping and alias mapping to a single fragment.
func (p *QueryPreprocessor) cleanFragment(fragment string) string {
	cleaned := pricePattern.ReplaceAllString(fragment, " ")
	cleaned = conjunctionDelimiterPattern.ReplaceAllString(cleaned, " and ")
	cleaned = nonFoodCharPattern.ReplaceAllString(cleaned, " ")
	cleaned = collapse(cleaned)

	cleaned = stripAffixes(cleaned)
	cleaned = p.applyAliases(cleaned)
	cleaned = stripAffixes(cleaned)

	return cleaned
}

func (p *QueryPreprocessor) applyAliases(s string) string {
	if canonical, ok := p.aliases[s]; ok {
		return canonical
	}
	for _, alias := range p.aliasPatterns {
		s = alias.re.ReplaceAllString(s, alias.canonical)
	}
	return collapse(s)
}

// isValidTerm rejects short fragments, fragments without letters and known OCR garbage
func (p *QueryPreprocessor) isValidTerm(term string) bool {
	if utf8.RuneCountInString(term) < minTermLength {
		return false
	}
	if !strings.ContainsFunc(term, unicode.IsLetter) {
		return false
	}
	if p.blacklist[term] {
		return false
	}
	return true
}

// stripAffixes repeatedly removes descriptive prefixes and filler suffixes
func stripAffixes(s string) string {
	for changed := true; changed; {
		changed = false
		for _, prefix := range descriptivePrefixes {
			if s == prefix {
				return ""
			}
			if strings.HasPrefix(s, prefix+" ") {
				s = strings.TrimSpace(s[len(prefix)+1:])
				changed = true
				break
			}
		}
		for _, suffix := range fillerSuffixes {
			if strings.HasSuffix(s, " "+suffix) {
				s = strings.TrimSpace(s[:len(s)-len(suffix)-1])
				changed = true
				break
			}
		}
		if t := strings.TrimSuffix(s, " and"); t != s {
			s = t
			changed = true
		}
		if t := strings.TrimPrefix(s, "and "); t != s {
			s = t
			changed = true
		}
	}
	return s
}

// foldText lowercases and strips accents ("Crostatiné" -> "crostatine")
func foldText(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return collapse(folded)
}

func collapse(s string) string {
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " -'")
}

func sortedByLength(items []string) []string {
	out := append([]string(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
