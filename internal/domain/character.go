package domain

// CharacterRecord is one character from the top-characters collection.
type CharacterRecord struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	NameKanji string     `json:"name_kanji,omitempty"`
	Nicknames []string   `json:"nicknames,omitempty"`
	Favorites int        `json:"favorites"`
	Role      string     `json:"role,omitempty"`
	Image     string     `json:"image"`
	About     string     `json:"about,omitempty"`
	Anime     []AnimeRef `json:"anime,omitempty"`
}

// AnimeRef points from a character back to a title it appears in.
type AnimeRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Role  string `json:"role,omitempty"`
}

// CharacterRole is a character as listed on an anime record.
type CharacterRole struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role,omitempty"`
}
