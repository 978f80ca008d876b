package conversation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// Field is one value proposed by an extractor.
type Field struct {
	Key   domain.FieldKey
	Value any
	// OnlyIfUnset fields are dropped when the session already holds the key.
	OnlyIfUnset bool
}

// Extractor reads raw message text and proposes fields. It never fails;
// no match means no fields.
type Extractor struct {
	Name string
	Fn   func(text string) []Field
}

// Extractors is the fixed pipeline run on every user message. Results are
// merged in this order, so the later extractor wins when two set the same key.
var Extractors = []Extractor{
	{Name: "specific_questions", Fn: ExtractSpecificQuestions},
	{Name: "subject_line", Fn: ExtractSubjectLine},
	{Name: "time_period", Fn: ExtractTimePeriod},
	{Name: "pio_office", Fn: ExtractPIOOffice},
	{Name: "personal_info", Fn: ExtractPersonalInfo},
	{Name: "delivery", Fn: ExtractDeliveryPreferences},
	{Name: "fees_bpl", Fn: ExtractFeesAndBPL},
	{Name: "declarations", Fn: ExtractDeclarations},
	{Name: "place_of_filing", Fn: ExtractPlaceOfFiling},
	{Name: "complaint_type", Fn: ExtractComplaintType},
	{Name: "location", Fn: ExtractLocation},
}

const devanagari = `\x{0900}-\x{097F}`

var (
	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)provide\s+(?:copies?|details?|information|records?|documents?)\s+(?:of|about|regarding)\s+([^.?!]+)`),
		regexp.MustCompile(`(?i)(?:what|which|how\s+many|how\s+much)\s+([^.?!]+)`),
		regexp.MustCompile(`(?i)(?:list|show|give)\s+(?:me|us)?\s*([^.?!]+)`),
	}

	subjectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)subject:?\s*([^.!?]+)`),
		regexp.MustCompile(`(?i)title:?\s*([^.!?]+)`),
		regexp.MustCompile(`(?i)(?:information|details|records)\s+(?:on|about|regarding)\s+([^.!?]+)`),
	}

	timePeriodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\w+\s+\d{4})\s+to\s+(\w+\s+\d{4})`),
		regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+to\s+(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)from\s+(\w+\s+\d{4})\s+to\s+(\w+\s+\d{4})`),
		regexp.MustCompile(`(?i)(\d{4})\s+to\s+(\d{4})`),
	}

	relativeNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([a-zA-Z` + devanagari + `\s]+?),?\s*(?:father|dad|papa|पिता)\s+([a-zA-Z` + devanagari + `\s]+)`),
		regexp.MustCompile(`(?i)([a-zA-Z` + devanagari + `\s]+?),?\s*(?:husband|पति)\s+([a-zA-Z` + devanagari + `\s]+)`),
	}

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:my name is|i am|मेरा नाम)\s+([a-zA-Z` + devanagari + `\s]+?)(?:\s|,|$)`),
		regexp.MustCompile(`(?i)^([a-zA-Z` + devanagari + `\s]+?)(?:\s|,|$)`),
	}

	nameIntroducer = regexp.MustCompile(`(?i)^\s*(?:my name is|i am|मेरा नाम)\s+`)

	placePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:from|in|at)\s+([a-zA-Z\s]+?)(?:\s|,|$)`),
		regexp.MustCompile(`(?i)([a-zA-Z\s]+?)\s+(?:city|town|district)`),
	}

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:in|at|near|from)\s+([a-zA-Z\s]+?)(?:\s|,|$)`),
		regexp.MustCompile(`(?i)([a-zA-Z\s]+?)\s+(?:area|colony|sector|block|road|street)`),
		regexp.MustCompile(`(?i)(?:मेरे|हमारे|यहाँ)\s+([a-zA-Z` + devanagari + `\s]+?)(?:\s+में|$)`),
	}

	devanagariChar = regexp.MustCompile(`[` + devanagari + `]`)
)

var pioOffices = []string{
	"municipal corporation",
	"municipality",
	"electricity department",
	"police",
	"health department",
	"education department",
	"revenue department",
	"pwd",
	"public works",
}

type keywordGroup struct {
	value    string
	keywords []string
}

var (
	deliveryKeywords = []keywordGroup{
		{string(domain.DeliveryPost), []string{"post", "mail", "courier"}},
		{string(domain.DeliveryInPerson), []string{"in person", "collect", "pickup", "personally"}},
	}

	postTypeKeywords = []keywordGroup{
		{string(domain.PostOrdinary), []string{"ordinary", "regular", "normal"}},
		{string(domain.PostRegistered), []string{"registered", "regd"}},
		{string(domain.PostSpeed), []string{"speed", "express", "fast"}},
	}

	complaintKeywords = []keywordGroup{
		{"road", []string{"pothole", "road", "street", "gaddha", "sadak"}},
		{"water", []string{"water", "pani", "supply", "tap", "bore"}},
		{"electricity", []string{"light", "bijli", "power", "current", "electricity"}},
		{"garbage", []string{"garbage", "waste", "kachara", "safai"}},
		{"documents", []string{"certificate", "license", "passport", "ration", "praman"}},
		{"pension", []string{"pension", "scholarship", "benefit", "allowance"}},
	}

	hinglishWords = []string{"aur", "kar", "hai", "nahi", "kya", "mere", "yahan", "problem"}
)

// ExtractSpecificQuestions collects every question-like phrase in the message.
// The resulting list replaces any earlier one.
func ExtractSpecificQuestions(text string) []Field {
	var questions []string
	for _, p := range questionPatterns {
		for _, m := range p.FindAllString(text, -1) {
			q := strings.TrimSpace(m)
			if runeLen(q) > 10 && runeLen(q) < 200 {
				questions = append(questions, q)
			}
		}
	}
	if len(questions) == 0 {
		return nil
	}
	return []Field{{Key: domain.FieldSpecificQuestions, Value: questions}}
}

// ExtractSubjectLine reads an explicit subject or an "information on X" phrase.
func ExtractSubjectLine(text string) []Field {
	var subject string
	for _, p := range subjectPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if s := strings.TrimSpace(m[1]); runeLen(s) > 5 {
				subject = s
			}
		}
	}
	if subject == "" {
		return nil
	}
	return []Field{{Key: domain.FieldSubjectLine, Value: subject}}
}

// ExtractTimePeriod captures "<start> to <end>" ranges as raw strings.
func ExtractTimePeriod(text string) []Field {
	var start, end string
	for _, p := range timePeriodPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			start, end = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	if start == "" {
		return nil
	}
	return []Field{
		{Key: domain.FieldTimePeriodStart, Value: start},
		{Key: domain.FieldTimePeriodEnd, Value: end},
	}
}

// ExtractPIOOffice returns the first known office name found in the message.
func ExtractPIOOffice(text string) []Field {
	lower := strings.ToLower(text)
	for _, office := range pioOffices {
		if strings.Contains(lower, office) {
			return []Field{{Key: domain.FieldPIOOffice, Value: office}}
		}
	}
	return nil
}

// ExtractPersonalInfo reads an address candidate and the applicant's name.
// A "<name>, father|husband <name>" phrase sets both names; otherwise the
// single-name fallback applies only while the session has no name.
func ExtractPersonalInfo(text string) []Field {
	var fields []Field
	if strings.Contains(text, ",") && runeLen(text) > 20 {
		fields = append(fields, Field{Key: domain.FieldCompleteAddress, Value: strings.TrimSpace(text)})
	}

	var applicant, relative string
	for _, p := range relativeNamePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil || runeLen(m[1]) <= 2 || runeLen(m[2]) <= 2 {
			continue
		}
		name := strings.TrimSpace(nameIntroducer.ReplaceAllString(m[1], ""))
		if name == "" {
			continue
		}
		applicant, relative = name, strings.TrimSpace(m[2])
	}
	if applicant != "" {
		return append(fields,
			Field{Key: domain.FieldApplicantName, Value: applicant},
			Field{Key: domain.FieldFatherHusbandName, Value: relative},
		)
	}

	var name string
	for _, p := range namePatterns {
		m := p.FindStringSubmatch(text)
		if m != nil && runeLen(m[1]) > 2 && runeLen(m[1]) < 30 {
			name = strings.TrimSpace(m[1])
		}
	}
	if name != "" {
		fields = append(fields, Field{Key: domain.FieldApplicantName, Value: name, OnlyIfUnset: true})
	}
	return fields
}

// ExtractDeliveryPreferences maps keywords to a delivery channel and post type.
func ExtractDeliveryPreferences(text string) []Field {
	lower := strings.ToLower(text)
	var fields []Field
	if v := firstKeywordGroup(lower, deliveryKeywords); v != "" {
		fields = append(fields, Field{Key: domain.FieldDeliveryMethod, Value: v})
	}
	if v := firstKeywordGroup(lower, postTypeKeywords); v != "" {
		fields = append(fields, Field{Key: domain.FieldPostType, Value: v})
	}
	return fields
}

// ExtractFeesAndBPL applies keyword co-occurrence rules. A bare "no" or "yes"
// anywhere in the message counts, so compound sentences can misfire.
func ExtractFeesAndBPL(text string) []Field {
	lower := strings.ToLower(text)
	has := func(s string) bool { return strings.Contains(lower, s) }
	var fields []Field

	if has("agree to pay") || (has("yes") && has("fees")) {
		fields = append(fields, Field{Key: domain.FieldAgreeToPayFees, Value: true})
	} else if has("no") && has("fees") {
		fields = append(fields, Field{Key: domain.FieldAgreeToPayFees, Value: false})
	}

	if has("bpl") || has("below poverty") {
		fields = append(fields, Field{Key: domain.FieldBPLCategory, Value: true})
	} else if has("no") && (has("bpl") || has("poverty")) {
		fields = append(fields, Field{Key: domain.FieldBPLCategory, Value: false})
	}

	if has("deposited") || has("paid") {
		fields = append(fields, Field{Key: domain.FieldApplicationFeeDeposited, Value: true})
	}
	return fields
}

// ExtractDeclarations applies the same co-occurrence rules to the two declarations.
func ExtractDeclarations(text string) []Field {
	lower := strings.ToLower(text)
	has := func(s string) bool { return strings.Contains(lower, s) }
	var fields []Field

	if has("provided before") || has("given before") {
		fields = append(fields, Field{Key: domain.FieldInformationProvidedBefore, Value: true})
	} else if has("no") && has("before") {
		fields = append(fields, Field{Key: domain.FieldInformationProvidedBefore, Value: false})
	}

	if has("publicly available") || has("already available") {
		fields = append(fields, Field{Key: domain.FieldInformationPubliclyAvailable, Value: true})
	} else if has("no") && has("available") {
		fields = append(fields, Field{Key: domain.FieldInformationPubliclyAvailable, Value: false})
	}
	return fields
}

// ExtractPlaceOfFiling reads "from|in|at X" or "X city|town|district".
func ExtractPlaceOfFiling(text string) []Field {
	var place string
	for _, p := range placePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if s := strings.TrimSpace(m[1]); runeLen(s) > 2 && runeLen(s) < 30 {
				place = s
			}
		}
	}
	if place == "" {
		return nil
	}
	return []Field{{Key: domain.FieldPlaceOfFiling, Value: place}}
}

// ExtractComplaintType classifies the message into the first matching category.
func ExtractComplaintType(text string) []Field {
	if v := firstKeywordGroup(strings.ToLower(text), complaintKeywords); v != "" {
		return []Field{{Key: domain.FieldComplaintType, Value: v}}
	}
	return nil
}

// ExtractLocation returns every place mention, in order. The last one wins
// in the session; each one counts towards the learned location mentions.
func ExtractLocation(text string) []Field {
	var fields []Field
	for _, p := range locationPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if s := strings.TrimSpace(m[1]); runeLen(s) > 2 && runeLen(s) < 50 {
				fields = append(fields, Field{Key: domain.FieldLocation, Value: s})
			}
		}
	}
	return fields
}

// DetectMixedLanguage reports whether the message contains Devanagari script
// or common romanized Hindi words.
func DetectMixedLanguage(text string) bool {
	if devanagariChar.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range hinglishWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func firstKeywordGroup(lower string, groups []keywordGroup) string {
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.value
			}
		}
	}
	return ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
