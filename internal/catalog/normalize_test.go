package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
)

func TestNormalizer_EpisodeURLs(t *testing.T) {
	n := Normalizer{EpisodeURLBase: "https://watchnime.com/watch/"}

	assert.Equal(t, []string{
		"https://watchnime.com/watch/52991/1",
		"https://watchnime.com/watch/52991/2",
	}, n.EpisodeURLs(52991, 2))
	assert.Nil(t, n.EpisodeURLs(52991, 0))

	assert.Equal(t, []string{DefaultEpisodeURLBase + "/7/1"}, Normalizer{}.EpisodeURLs(7, 1))
}

func TestNormalizer_AnimeDefaults(t *testing.T) {
	rec := Normalizer{}.Anime(jikan.Anime{
		MalID:        1,
		Title:        "Frieren: Beyond Journey&#039;s End",
		TitleEnglish: ptr(" Frieren "),
		Type:         ptr("TV Special"),
		Season:       ptr("Fall"),
		Genres:       nil,
	})

	assert.Equal(t, "Frieren: Beyond Journey's End", rec.Title)
	assert.Equal(t, "Frieren", rec.TitleEnglish)
	assert.Empty(t, rec.TitleJapanese)
	assert.Zero(t, rec.Score)
	assert.Equal(t, domain.PlaceholderImage, rec.Image)
	assert.Equal(t, domain.AnimeType("TV Special"), rec.Type, "unknown types are kept verbatim")
	assert.Equal(t, domain.SeasonFall, rec.Season)
	assert.NotNil(t, rec.Genres)
	assert.Nil(t, rec.Aired.From)
}

func TestNormalizer_AnimeCharacters(t *testing.T) {
	var role jikan.CharacterRole
	role.Role = "Main"
	role.Character.MalID = 11
	role.Character.Name = "Edward Elric"
	role.Character.Images.JPG.ImageURL = "https://cdn.example/ed.jpg"

	rec := Normalizer{}.Anime(jikan.Anime{MalID: 5114, Title: "FMA:B", Characters: []jikan.CharacterRole{role}})

	require.Len(t, rec.Characters, 1)
	assert.Equal(t, domain.CharacterRole{ID: 11, Name: "Edward Elric", Image: "https://cdn.example/ed.jpg", Role: "Main"}, rec.Characters[0])
}

func TestToMarkdown(t *testing.T) {
	assert.Equal(t, "Plain synopsis.", toMarkdown("  Plain synopsis. "))
	assert.Equal(t, "", toMarkdown(""))
	assert.Equal(t, "Won the **Crunchyroll** award.", toMarkdown("<p>Won the <b>Crunchyroll</b> award.</p>"))
	assert.Equal(t, "5 < 6 is not markup", toMarkdown("5 < 6 is not markup"))
}

func TestNormalizer_Character(t *testing.T) {
	rec := Normalizer{}.Character(jikan.Character{
		MalID:     40,
		Name:      "Luffy Monkey D.",
		NameKanji: ptr("モンキー・D・ルフィ"),
		About:     ptr("Captain of the <i>Straw Hats</i>.<br>"),
	})

	assert.Equal(t, domain.PlaceholderImage, rec.Image)
	assert.Zero(t, rec.Favorites)
	assert.Equal(t, "モンキー・D・ルフィ", rec.NameKanji)
	assert.Contains(t, rec.About, "*Straw Hats*")
}
