package query

import "sort"

// AliasTable maps a canonical concept to the surface forms that refer to it.
// Handlers and the expander read the same tables so their keyword coverage
// cannot drift apart.
type AliasTable map[string][]string

// Deities lists deity names and their common variants.
var Deities = AliasTable{
	"venkateswara": {"balaji", "srinivasa", "venkateshwara", "venkatesa", "perumal", "tirupati balaji"},
	"ganesha":      {"ganapati", "ganesh", "vinayaka", "ganapathi", "pillayar"},
	"shiva":        {"siva", "mahadeva", "shiv", "shankar", "eshwara"},
	"lakshmi":      {"laxmi", "mahalakshmi", "padmavathi"},
	"hanuman":      {"anjaneya", "maruti", "bajrangbali", "anjaneyar"},
	"durga":        {"ambika", "parvati", "devi", "amman"},
	"subramanya":   {"murugan", "kartikeya", "skanda", "muruga", "karthikeya"},
	"rama":         {"sri rama", "ram", "raghava"},
	"krishna":      {"govinda", "gopala", "kanha"},
}

// Events lists ritual and event types with their variants.
var Events = AliasTable{
	"kalyanam":             {"kalyanotsavam", "kalyana utsavam", "celestial wedding", "wedding ceremony"},
	"abhishekam":           {"thirumanjanam", "sacred bath"},
	"archana":              {"archanai", "name chanting"},
	"homam":                {"havan", "homa", "yagna", "yajna"},
	"satyanarayana vratam": {"satyanarayana pooja", "satyanarayana katha", "satyanarayana swamy vratam"},
	"suprabhatam":          {"suprabhatham", "morning prayer"},
	"aarti":                {"arati", "aarthi", "harathi", "mangala aarti"},
	"bhajan":               {"bhajans", "kirtan", "sankirtan"},
}

// Festivals lists festival names whose spelling varies by region.
var Festivals = AliasTable{
	"deepavali":           {"diwali", "divali", "deepawali"},
	"maha shivaratri":     {"shivaratri", "shivratri", "maha shivratri"},
	"ganesh chaturthi":    {"vinayaka chaturthi", "ganesha chaturthi", "vinayaka chavithi"},
	"krishna janmashtami": {"janmashtami", "gokulashtami", "krishnashtami"},
	"sri rama navami":     {"rama navami", "ram navami"},
	"dussehra":            {"dasara", "dussera", "vijayadashami"},
	"navaratri":           {"navratri", "navarathri"},
	"makara sankranti":    {"sankranti", "pongal"},
	"ugadi":               {"yugadi", "gudi padwa"},
}

// Weekdays maps weekday names to abbreviations.
var Weekdays = AliasTable{
	"sunday":    {"sun"},
	"monday":    {"mon"},
	"tuesday":   {"tue", "tues"},
	"wednesday": {"wed"},
	"thursday":  {"thu", "thurs"},
	"friday":    {"fri"},
	"saturday":  {"sat"},
}

// Months maps month names to abbreviations.
var Months = AliasTable{
	"january":   {"jan"},
	"february":  {"feb"},
	"march":     {"mar"},
	"april":     {"apr"},
	"may":       {},
	"june":      {"jun"},
	"july":      {"jul"},
	"august":    {"aug"},
	"september": {"sep", "sept"},
	"october":   {"oct"},
	"november":  {"nov"},
	"december":  {"dec"},
}

// LunarDays lists recurring lunar observances.
var LunarDays = AliasTable{
	"purnima":   {"full moon", "pournami", "poornima"},
	"amavasya":  {"new moon", "amavasai"},
	"ekadashi":  {"ekadasi"},
	"sankashti": {"sankashti chaturthi", "sankatahara chaturthi"},
	"pradosham": {"pradosh", "pradosha"},
}

// dateRelative marks queries that ask about an upcoming date without naming it.
var dateRelative = []string{"next", "upcoming", "coming up", "this month", "soon"}

// canonicalTokens folds single-word spelling variants onto one token. Every
// value is a fixed point of the map so normalization stays idempotent.
var canonicalTokens = map[string]string{
	"puja":           "pooja",
	"pujas":          "pooja",
	"poojas":         "pooja",
	"timings":        "hours",
	"timing":         "hours",
	"hrs":            "hours",
	"sathyanarayana": "satyanarayana",
	"satyanarayan":   "satyanarayana",
	"sathyanarayan":  "satyanarayana",
	"vratham":        "vratam",
	"vrat":           "vratam",
	"vratha":         "vratam",
	"abishekam":      "abhishekam",
	"abhishek":       "abhishekam",
	"prasad":         "prasadam",
	"prasadham":      "prasadam",
	"tmrw":           "tomorrow",
	"tmr":            "tomorrow",
	"tomorow":        "tomorrow",
	"addr":           "address",
	"ph":             "phone",
	"thx":            "thanks",
	"panchangam":     "panchang",
	"panchanga":      "panchang",
	"kalyanotsavam":  "kalyanam",
}

// buttonPayloads maps quick-reply button identifiers to the query they stand for.
var buttonPayloads = map[string]string{
	"btn_hours":       "temple hours",
	"btn_fees":        "pooja fees",
	"btn_events":      "upcoming festivals",
	"btn_panchang":    "panchang today",
	"btn_contact":     "contact",
	"btn_location":    "location",
	"btn_food":        "food",
	"btn_menu":        "menu",
	"btn_subscribe":   "subscribe",
	"btn_unsubscribe": "unsubscribe",
}

// Surfaces returns the canonical name followed by its aliases.
func (t AliasTable) Surfaces(canonical string) []string {
	aliases, ok := t[canonical]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(aliases)+1)
	out = append(out, canonical)
	out = append(out, aliases...)
	return out
}

// Mentions reports whether text names the canonical concept or one of its aliases.
func (t AliasTable) Mentions(text, canonical string) bool {
	return ContainsAny(text, t.Surfaces(canonical)...)
}

// Find returns every canonical concept mentioned in text, sorted.
func (t AliasTable) Find(text string) []string {
	var found []string
	for canonical := range t {
		if t.Mentions(text, canonical) {
			found = append(found, canonical)
		}
	}
	sort.Strings(found)
	return found
}
