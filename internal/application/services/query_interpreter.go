package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
)

// KeywordMapping maps a lowercase phrase to an identifier. Tables are ordered;
// where first-match-wins applies, earlier entries take precedence.
type KeywordMapping struct {
	Keyword string `json:"keyword"`
	Target  string `json:"target"`
}

// InterpreterConfig holds the keyword tables the interpreter scans with
type InterpreterConfig struct {
	ProcedureKeywords   []KeywordMapping
	InsurerKeywords     []KeywordMapping
	PlanKeywords        []string
	NoInsurancePhrases  []string
	NoInsurancePatterns []*regexp.Regexp
	CostQueryPhrases    []string
	ConjunctionWords    []string
	// LocationStopWords are capitalized words that never name a place
	LocationStopWords  []string
	DefaultRadiusMiles float64
}

// DefaultInterpreterConfig returns the built-in keyword tables
func DefaultInterpreterConfig() *InterpreterConfig {
	return &InterpreterConfig{
		ProcedureKeywords: []KeywordMapping{
			{Keyword: "mri", Target: "MRI"},
			{Keyword: "cat scan", Target: "CT Scan"},
			{Keyword: "ct scan", Target: "CT Scan"},
			{Keyword: "computed tomography", Target: "CT Scan"},
			{Keyword: "x-ray", Target: "X-Ray"},
			{Keyword: "xray", Target: "X-Ray"},
			{Keyword: "ultrasound", Target: "Ultrasound"},
			{Keyword: "blood test", Target: "Blood Test"},
			{Keyword: "lab test", Target: "Blood Test"},
			{Keyword: "cbc", Target: "Blood Test"},
			{Keyword: "complete blood count", Target: "Blood Test"},
		},
		InsurerKeywords: []KeywordMapping{
			{Keyword: "bluecross", Target: "bluecross"},
			{Keyword: "blue cross", Target: "bluecross"},
			{Keyword: "aetna", Target: "aetna"},
			{Keyword: "cigna", Target: "cigna"},
			{Keyword: "unitedhealthcare", Target: "unitedhealthcare"},
			{Keyword: "united healthcare", Target: "unitedhealthcare"},
			{Keyword: "humana", Target: "humana"},
			{Keyword: "kaiser", Target: "kaiser"},
			{Keyword: "kaiser permanente", Target: "kaiser"},
			{Keyword: "medicare", Target: "medicare"},
			{Keyword: "medicaid", Target: "medicaid"},
		},
		PlanKeywords: []string{
			"premium", "gold", "basic", "select", "choice",
			"advantage", "elite", "plus", "value", "enhanced",
		},
		NoInsurancePhrases: []string{
			"no insurance", "without insurance", "uninsured",
			"self-pay", "self pay", "cash pay", "cash payment", "cash only", "paying cash",
			"no coverage", "without coverage",
			"did not provide insurance", "did not provide an insurance",
		},
		NoInsurancePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)did\s+not\s+provide\s+(?:an\s+)?insur[ae][a-z]*`),
			regexp.MustCompile(`(?i)they\s+did\s+not\s+provide\s+(?:an\s+)?insur[ae][a-z]*`),
		},
		CostQueryPhrases: []string{"cost", "price", "how much", "will cost", "pricing"},
		ConjunctionWords: []string{"and", "plus", "with"},
		LocationStopWords: []string{
			"i", "i'm", "im", "my", "me", "we", "our", "need", "find", "show", "get", "looking",
			"what", "where", "how", "which", "cheapest", "best", "no", "without", "near", "in",
			"please", "can", "the", "a", "an", "uninsured", "cash", "self",
			"compare", "is", "are", "there", "any", "hi", "hello", "hey",
		},
		DefaultRadiusMiles: entities.DefaultRadiusMiles,
	}
}

var (
	fiveDigitPattern    = regexp.MustCompile(`\b\d{5}\b`)
	cityStatePattern    = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s*([A-Z]{2})\b`)
	capitalizedPattern  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	capitalizedWord     = regexp.MustCompile(`[A-Z][a-z]+`)
	radiusPattern       = regexp.MustCompile(`(?i)(\d+)\s*(?:mile|mi|miles|mile radius|radius)`)
	withinRadiusPattern = regexp.MustCompile(`(?i)within\s+(\d+)`)
)

// QueryInterpreter turns free text into a ParsedIntent by rule-based keyword
// and pattern scanning. It performs no I/O and is safe for concurrent use.
type QueryInterpreter struct {
	cfg         *InterpreterConfig
	catalog     *entities.ReferenceCatalog
	conjunction *regexp.Regexp
	// keywords matches any procedure or insurer keyword, longest first
	keywords  *regexp.Regexp
	stopWords map[string]struct{}
}

// NewQueryInterpreter creates a new interpreter over the catalog's procedures and insurers
func NewQueryInterpreter(cfg *InterpreterConfig, catalog *entities.ReferenceCatalog) *QueryInterpreter {
	if cfg == nil {
		cfg = DefaultInterpreterConfig()
	}

	words := make([]string, len(cfg.ConjunctionWords))
	for i, w := range cfg.ConjunctionWords {
		words[i] = regexp.QuoteMeta(w)
	}
	stop := make(map[string]struct{}, len(cfg.LocationStopWords))
	for _, w := range cfg.LocationStopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &QueryInterpreter{
		cfg:         cfg,
		catalog:     catalog,
		conjunction: regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`),
		keywords:    keywordPattern(cfg),
		stopWords:   stop,
	}
}

func keywordPattern(cfg *InterpreterConfig) *regexp.Regexp {
	var kws []string
	for _, table := range [][]KeywordMapping{cfg.ProcedureKeywords, cfg.InsurerKeywords} {
		for _, kw := range table {
			if kw.Keyword != "" {
				kws = append(kws, kw.Keyword)
			}
		}
	}
	if len(kws) == 0 {
		return nil
	}
	sort.SliceStable(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })
	for i, kw := range kws {
		kws[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(kws, "|") + `)`)
}

// Parse extracts procedures, insurance, location and radius from text.
// It never fails: unrecognized parts fall back to defaults.
func (q *QueryInterpreter) Parse(text string) *entities.ParsedIntent {
	lower := strings.ToLower(text)

	intent := &entities.ParsedIntent{
		Procedures:          q.extractProcedures(text),
		ExplicitNoInsurance: q.ExplicitNoInsurance(text),
		Location:            q.extractLocation(text),
		RadiusMiles:         q.extractRadius(text),
	}

	if len(intent.Procedures) == 0 && q.catalog != nil {
		intent.Procedures = q.catalog.ProcedureIDs()
	}

	if !intent.ExplicitNoInsurance {
		intent.InsurerID = q.matchKeyword(lower, q.cfg.InsurerKeywords)
		intent.PlanID = q.extractPlan(lower, intent.InsurerID)
	}

	return intent
}

// ExplicitNoInsurance reports whether text states the patient is uninsured or paying cash
func (q *QueryInterpreter) ExplicitNoInsurance(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range q.cfg.NoInsurancePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, re := range q.cfg.NoInsurancePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsCostQuery reports whether text asks about cost
func (q *QueryInterpreter) IsCostQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range q.cfg.CostQueryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

type procedureHit struct {
	pos   int
	order int
	id    string
}

// extractProcedures returns procedure ids ordered by where they first appear in text.
// A conjunction split re-scans each segment and unions anything new at the end.
func (q *QueryInterpreter) extractProcedures(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range q.scanProcedures(text) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	if q.conjunction.MatchString(text) {
		for _, segment := range q.conjunction.Split(text, -1) {
			for _, id := range q.scanProcedures(segment) {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func (q *QueryInterpreter) scanProcedures(text string) []string {
	lower := strings.ToLower(text)
	var hits []procedureHit
	order := 0

	for _, kw := range q.cfg.ProcedureKeywords {
		pos := strings.Index(lower, kw.Keyword)
		if pos < 0 || !q.knownProcedure(kw.Target) {
			continue
		}
		hits = append(hits, procedureHit{pos: pos, order: order, id: kw.Target})
		order++
	}

	if q.catalog != nil {
		for _, loc := range fiveDigitPattern.FindAllStringIndex(text, -1) {
			if p, ok := q.catalog.ProcedureByCode(text[loc[0]:loc[1]]); ok {
				hits = append(hits, procedureHit{pos: loc[0], order: order, id: p.ID})
				order++
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].order < hits[j].order
	})

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func (q *QueryInterpreter) knownProcedure(id string) bool {
	if q.catalog == nil {
		return true
	}
	_, ok := q.catalog.Procedure(id)
	return ok
}

func (q *QueryInterpreter) matchKeyword(lower string, table []KeywordMapping) string {
	for _, kw := range table {
		if strings.Contains(lower, kw.Keyword) {
			return kw.Target
		}
	}
	return ""
}

// extractPlan returns the first plan of insurerID matching a plan keyword, in keyword order
func (q *QueryInterpreter) extractPlan(lower, insurerID string) string {
	if insurerID == "" || q.catalog == nil {
		return ""
	}
	insurer, ok := q.catalog.Insurer(insurerID)
	if !ok {
		return ""
	}
	for _, kw := range q.cfg.PlanKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		if plan, ok := insurer.PlanMatching(kw); ok {
			return plan.ID
		}
	}
	return ""
}

// extractLocation prefers a zip, then "City, ST", then a bare capitalized place name.
// A five-digit token that is a known billing code is not taken as a zip unless
// the zip table also knows it.
func (q *QueryInterpreter) extractLocation(text string) string {
	for _, token := range fiveDigitPattern.FindAllString(text, -1) {
		if q.catalog == nil {
			return token
		}
		if _, isZip := q.catalog.Zip(token); isZip {
			return token
		}
		if _, isCode := q.catalog.ProcedureByCode(token); !isCode {
			return token
		}
	}

	if m := cityStatePattern.FindStringSubmatch(text); m != nil {
		if city := q.trimStopWords(m[1]); city != "" {
			return city + ", " + m[2]
		}
	}

	spans := q.keywordSpans(text)
	for _, loc := range capitalizedPattern.FindAllStringIndex(text, -1) {
		for _, part := range splitAtSpans(text, loc, spans) {
			if place := q.trimStopWords(part); place != "" && !q.collidesWithKeyword(place) {
				return place
			}
		}
	}
	return ""
}

// splitAtSpans breaks a capitalized run at words inside a keyword match,
// so "Ray" from "X-Ray" or "Scan" from "CT Scan" never reads as a place.
func splitAtSpans(text string, run []int, spans [][]int) []string {
	var parts []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.Join(current, " "))
			current = nil
		}
	}
	for _, w := range capitalizedWord.FindAllStringIndex(text[run[0]:run[1]], -1) {
		word := []int{run[0] + w[0], run[0] + w[1]}
		if overlapsAny(word, spans) {
			flush()
			continue
		}
		current = append(current, text[word[0]:word[1]])
	}
	flush()
	return parts
}

func (q *QueryInterpreter) keywordSpans(text string) [][]int {
	if q.keywords == nil {
		return nil
	}
	return q.keywords.FindAllStringIndex(text, -1)
}

func overlapsAny(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] < s[1] && s[0] < span[1] {
			return true
		}
	}
	return false
}

// trimStopWords drops leading stop words and plan keywords ("Gold Pasadena" -> "Pasadena")
func (q *QueryInterpreter) trimStopWords(run string) string {
	words := strings.Fields(run)
	for len(words) > 0 {
		lower := strings.ToLower(words[0])
		if _, stop := q.stopWords[lower]; !stop && !q.isPlanKeyword(lower) {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func (q *QueryInterpreter) isPlanKeyword(lower string) bool {
	for _, kw := range q.cfg.PlanKeywords {
		if lower == kw {
			return true
		}
	}
	return false
}

func (q *QueryInterpreter) collidesWithKeyword(run string) bool {
	lower := strings.ToLower(run)
	for _, kw := range q.cfg.InsurerKeywords {
		if strings.Contains(lower, kw.Keyword) {
			return true
		}
	}
	for _, kw := range q.cfg.ProcedureKeywords {
		if strings.Contains(lower, kw.Keyword) {
			return true
		}
	}
	return false
}

func (q *QueryInterpreter) extractRadius(text string) float64 {
	m := radiusPattern.FindStringSubmatch(text)
	if m == nil {
		m = withinRadiusPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return entities.ClampRadius(q.cfg.DefaultRadiusMiles)
	}
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return entities.ClampRadius(q.cfg.DefaultRadiusMiles)
	}
	return entities.ClampRadius(r)
}
