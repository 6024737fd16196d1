// internal/campus/locations/resolver.go
package locations

import (
	"strconv"
	"strings"

	"campus-assistant-workers/internal/models"
)

// IntentChoosePlaceType is the NLU intent carried by the answer to the
// dorm-or-academic disambiguation question.
const IntentChoosePlaceType = "choose_place_type"

const (
	replyAskKind      = "“хичээлийн байр” эсвэл “дотуур байр” гэж хариулаарай 🙂"
	replyNotAvailable = "Уучлаарай, тэр байрны мэдээлэл энэ бот дээр байхгүй байна."
	replyNumberMiss   = "Уучлаарай, тэр дугаартай байршил олдсонгүй. Дахиад нэрээр нь бичээд үзээрэй."
	replyListHeader   = "Боломжтой байршлууд:"
	replyFallback     = "Уучлаарай, тэр байршлыг олсонгүй 😅 “байршлууд” гэж бичээд жагсаалтыг хараарай."
	replyMissingLink  = "(⚠️ Google Maps линк одоогоор locations.yml дээр байхгүй байна — линкээ нэмээд дахин туршаарай.)"

	fallbackTitle = "Байршил"
)

// Phrases that request the full location list, matched against the
// normalized text. байршилууд is a common misspelling of байршлууд.
var listPhrases = map[string]struct{}{
	"байршлууд":  {},
	"жагсаалт":   {},
	"locations":  {},
	"list":       {},
	"байршилууд": {},
}

type ResolveInput struct {
	Text   string
	Intent string
	State  models.LocationState
}

type ResolveResult struct {
	Replies      []string
	AskPlaceType bool
	State        models.LocationState
	Resolved     *models.LocationRecord
}

// Resolver turns one user utterance into replies and updated dialogue
// state against a fixed catalog.
type Resolver struct {
	catalog *Catalog
}

func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve runs the resolution pipeline. Steps are tried in priority order:
// an answer to a pending disambiguation, the list request, a bare number
// that still needs disambiguation, a number the text itself classifies, an
// exact alias, an alias substring, then the fallback hint. The first step
// that produces an outcome wins.
func (r *Resolver) Resolve(in ResolveInput) ResolveResult {
	out := ResolveResult{State: in.State}

	// 1. An answer to the pending dorm-or-academic question.
	if in.Intent == IntentChoosePlaceType && out.State.PendingNumber != "" {
		if num, err := strconv.Atoi(out.State.PendingNumber); err == nil {
			return r.resolvePending(in.Text, num, out)
		}
		out.State.PendingNumber = ""
	}

	ntext := Normalize(in.Text)

	// 2. The full list.
	if _, ok := listPhrases[ntext]; ok {
		lines := []string{replyListHeader}
		for _, place := range r.catalog.All() {
			if place.Title != "" {
				lines = append(lines, "• "+place.Title)
			}
		}
		out.Replies = append(out.Replies, strings.Join(lines, "\n"))
		return out
	}

	num, hasNum := ExtractNumber(in.Text)
	kind, hasKind := DetectKind(in.Text)

	// 3. A bare number phrase: ask which kind of building before answering.
	if hasNum && !hasKind && MatchesNumberPattern(in.Text) {
		out.AskPlaceType = true
		out.State.PendingNumber = strconv.Itoa(num)
		return out
	}

	// 4. A number the text itself classifies.
	if hasNum && hasKind {
		if isForbidden(kind, num) {
			out.Replies = append(out.Replies, replyNotAvailable)
			out.State.PlaceType = string(kind)
			out.State.PendingNumber = ""
			return out
		}
		if place, ok := r.catalog.ByKindNumber(kind, num); ok {
			out.Replies = append(out.Replies, sayPlace(place))
			out.Resolved = place
			out.State.PlaceType = string(kind)
			out.State.PendingNumber = ""
			return out
		}
		out.Replies = append(out.Replies, replyNumberMiss)
		return out
	}

	// 5. Exact alias.
	if place, ok := r.catalog.ByAlias(ntext); ok {
		out.Replies = append(out.Replies, sayPlace(place))
		out.Resolved = place
		return out
	}

	// 6. Alias substring, in catalog order.
	for _, alias := range r.catalog.AliasesInOrder() {
		if alias == "" || !strings.Contains(ntext, alias) {
			continue
		}
		if place, ok := r.catalog.ByAlias(alias); ok {
			out.Replies = append(out.Replies, sayPlace(place))
			out.Resolved = place
			return out
		}
	}

	// 7. Nothing matched.
	out.Replies = append(out.Replies, replyFallback)
	return out
}

// resolvePending finishes a two-turn number resolution. The kind comes
// from the answer text, falling back to the previously confirmed place
// type. With no kind at all the question is repeated and the pending
// number survives for another try.
func (r *Resolver) resolvePending(text string, num int, out ResolveResult) ResolveResult {
	kind, ok := DetectKind(text)
	if !ok {
		switch out.State.PlaceType {
		case string(models.LocationKindClass):
			kind, ok = models.LocationKindClass, true
		case string(models.LocationKindDorm):
			kind, ok = models.LocationKindDorm, true
		}
	}
	if !ok {
		out.Replies = append(out.Replies, replyAskKind)
		return out
	}

	if isForbidden(kind, num) {
		out.Replies = append(out.Replies, replyNotAvailable)
		out.State.PendingNumber = ""
		out.State.PlaceType = string(kind)
		return out
	}

	if place, found := r.catalog.ByKindNumber(kind, num); found {
		out.Replies = append(out.Replies, sayPlace(place))
		out.Resolved = place
		out.State.PendingNumber = ""
		out.State.PlaceType = string(kind)
		return out
	}

	out.Replies = append(out.Replies, replyNumberMiss)
	out.State.PendingNumber = ""
	return out
}

func isForbidden(kind models.LocationKind, number int) bool {
	_, banned := forbiddenPlaces[kindNumber{kind, number}]
	return banned
}

// sayPlace renders a resolved place as title plus its Google Maps link, or
// a notice when the link is missing from locations.yml.
func sayPlace(rec *models.LocationRecord) string {
	title := rec.Title
	if title == "" {
		title = fallbackTitle
	}
	if url := strings.TrimSpace(rec.URL); url != "" {
		return title + "\n" + url
	}
	return title + "\n" + replyMissingLink
}
