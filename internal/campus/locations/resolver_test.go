// internal/campus/locations/resolver_test.go
package locations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assistant-workers/internal/models"
)

func newTestResolver() *Resolver {
	return NewResolver(BuildCatalog(testCatalogEntries()))
}

func TestResolver_ListRequest(t *testing.T) {
	resolver := newTestResolver()

	for _, phrase := range []string{"байршлууд", "жагсаалт", "locations", "list", "байршилууд", "  БАЙРШЛУУД  "} {
		t.Run(phrase, func(t *testing.T) {
			result := resolver.Resolve(ResolveInput{Text: phrase})

			require.Len(t, result.Replies, 1)
			lines := strings.Split(result.Replies[0], "\n")
			assert.Equal(t, "Боломжтой байршлууд:", lines[0])
			// Four surviving records, all titled.
			assert.Len(t, lines[1:], 4)
			for _, line := range lines[1:] {
				assert.True(t, strings.HasPrefix(line, "• "))
			}
		})
	}
}

func TestResolver_BareNumberAsksForKind(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "4"})

	assert.True(t, result.AskPlaceType)
	assert.Empty(t, result.Replies)
	assert.Equal(t, "4", result.State.PendingNumber)
	assert.Nil(t, result.Resolved)
}

func TestResolver_DisambiguationRoundTrip(t *testing.T) {
	resolver := newTestResolver()

	// Turn one: a bare number cannot be resolved yet.
	first := resolver.Resolve(ResolveInput{Text: "4"})
	require.True(t, first.AskPlaceType)
	require.Equal(t, "4", first.State.PendingNumber)

	// Turn two: dorm 4 is on the forbidden list, so the answer is the
	// not-available reply and the pending number is consumed.
	second := resolver.Resolve(ResolveInput{
		Text:   "дотуур байр",
		Intent: IntentChoosePlaceType,
		State:  first.State,
	})

	require.Len(t, second.Replies, 1)
	assert.Equal(t, "Уучлаарай, тэр байрны мэдээлэл энэ бот дээр байхгүй байна.", second.Replies[0])
	assert.Empty(t, second.State.PendingNumber)
	assert.Equal(t, "dorm", second.State.PlaceType)
	assert.Nil(t, second.Resolved)
}

func TestResolver_DisambiguationResolvesPlace(t *testing.T) {
	resolver := newTestResolver()

	first := resolver.Resolve(ResolveInput{Text: "1"})
	require.True(t, first.AskPlaceType)

	second := resolver.Resolve(ResolveInput{
		Text:   "хичээлийн байр",
		Intent: IntentChoosePlaceType,
		State:  first.State,
	})

	require.NotNil(t, second.Resolved)
	assert.Equal(t, "Хичээлийн 1-р байр (Төв байр)", second.Resolved.Title)
	require.Len(t, second.Replies, 1)
	assert.Equal(t, "Хичээлийн 1-р байр (Төв байр)\nhttps://maps.app.goo.gl/central", second.Replies[0])
	assert.Empty(t, second.State.PendingNumber)
	assert.Equal(t, "class", second.State.PlaceType)
}

func TestResolver_DisambiguationRepeatsQuestionWithoutKind(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{
		Text:   "мэдэхгүй ээ",
		Intent: IntentChoosePlaceType,
		State:  models.LocationState{PendingNumber: "7"},
	})

	require.Len(t, result.Replies, 1)
	assert.Equal(t, "“хичээлийн байр” эсвэл “дотуур байр” гэж хариулаарай 🙂", result.Replies[0])
	// The pending number survives for another try.
	assert.Equal(t, "7", result.State.PendingNumber)
}

func TestResolver_DisambiguationReusesStoredPlaceType(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{
		Text:   "тийм",
		Intent: IntentChoosePlaceType,
		State:  models.LocationState{PendingNumber: "7", PlaceType: "dorm"},
	})

	require.NotNil(t, result.Resolved)
	assert.Equal(t, "Оюутны 7-р байр", result.Resolved.Title)
	assert.Empty(t, result.State.PendingNumber)
}

func TestResolver_ClassifiedNumberResolvesDirectly(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "дотуур 7р байр хаана вэ"})

	require.NotNil(t, result.Resolved)
	assert.Equal(t, "Оюутны 7-р байр", result.Resolved.Title)
	assert.Equal(t, "dorm", result.State.PlaceType)
	assert.Empty(t, result.State.PendingNumber)
}

func TestResolver_ClassifiedForbiddenNumber(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "хичээлийн 6-р байр"})

	require.Len(t, result.Replies, 1)
	assert.Equal(t, "Уучлаарай, тэр байрны мэдээлэл энэ бот дээр байхгүй байна.", result.Replies[0])
	assert.Equal(t, "class", result.State.PlaceType)
	assert.Nil(t, result.Resolved)
}

func TestResolver_ClassifiedNumberMissKeepsState(t *testing.T) {
	resolver := newTestResolver()

	state := models.LocationState{PlaceType: "class"}
	result := resolver.Resolve(ResolveInput{Text: "дотуур 12-р байр", State: state})

	require.Len(t, result.Replies, 1)
	assert.Equal(t, "Уучлаарай, тэр дугаартай байршил олдсонгүй. Дахиад нэрээр нь бичээд үзээрэй.", result.Replies[0])
	assert.Equal(t, state, result.State, "a miss by number leaves the state untouched")
}

func TestResolver_ExactAlias(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "  НОМЫН САН "})

	require.NotNil(t, result.Resolved)
	assert.Equal(t, "Номын сан", result.Resolved.Title)
	require.Len(t, result.Replies, 1)
	assert.Equal(t, "Номын сан\nhttps://maps.app.goo.gl/library", result.Replies[0])
}

func TestResolver_AliasSubstring(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "манай номын сан хаана байдаг вэ"})

	require.NotNil(t, result.Resolved)
	assert.Equal(t, "Номын сан", result.Resolved.Title)
}

func TestResolver_MissingLinkNotice(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "спорт заал"})

	require.Len(t, result.Replies, 1)
	assert.Equal(t,
		"Спорт заал\n(⚠️ Google Maps линк одоогоор locations.yml дээр байхгүй байна — линкээ нэмээд дахин туршаарай.)",
		result.Replies[0])
}

func TestResolver_Fallback(t *testing.T) {
	resolver := newTestResolver()

	result := resolver.Resolve(ResolveInput{Text: "огт хамаагүй зүйл"})

	require.Len(t, result.Replies, 1)
	assert.Equal(t, "Уучлаарай, тэр байршлыг олсонгүй 😅 “байршлууд” гэж бичээд жагсаалтыг хараарай.", result.Replies[0])
	assert.False(t, result.AskPlaceType)
	assert.Nil(t, result.Resolved)
}
