package bgg

// SearchResult is one candidate from a free-text name search.
// Candidate order is upstream relevance order; the pipeline takes the
// first candidate without re-ranking.
type SearchResult struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	YearPublished *int   `json:"year_published,omitempty"`
}

// Thing is the normalized metadata for a single BGG thing (game).
// Optional fields are nil when BGG has no value; a nil tag slice means
// "unknown", distinct from a present-but-empty collection.
type Thing struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	YearPublished   *int     `json:"year_published,omitempty"`
	Image           string   `json:"image,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	MinPlayers      *int     `json:"min_players,omitempty"`
	MaxPlayers      *int     `json:"max_players,omitempty"`
	PlaytimeMinutes *int     `json:"playtime_minutes,omitempty"`
	MinAge          *int     `json:"min_age,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Mechanics       []string `json:"mechanics,omitempty"`
	Families        []string `json:"families,omitempty"`
	Description     string   `json:"description,omitempty"`
	Expansion       bool     `json:"expansion,omitempty"`
}

// CoverURL returns the preferred cover image: the full-resolution field
// when available, the thumbnail otherwise, empty when neither exists.
func (t *Thing) CoverURL() string {
	if t.Image != "" {
		return t.Image
	}
	return t.Thumbnail
}

// Raw XMLAPI2 response types (internal).

type rawItems struct {
	Total int       `xml:"total,attr"`
	Items []rawItem `xml:"item"`
}

type rawItem struct {
	ID            int        `xml:"id,attr"`
	Type          string     `xml:"type,attr"`
	Thumbnail     string     `xml:"thumbnail"`
	Image         string     `xml:"image"`
	Names         []rawName  `xml:"name"`
	Description   string     `xml:"description"`
	YearPublished rawValue   `xml:"yearpublished"`
	MinPlayers    rawValue   `xml:"minplayers"`
	MaxPlayers    rawValue   `xml:"maxplayers"`
	PlayingTime   rawValue   `xml:"playingtime"`
	MinAge        rawValue   `xml:"minage"`
	Links         []rawLink  `xml:"link"`
}

type rawName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type rawValue struct {
	Value string `xml:"value,attr"`
}

type rawLink struct {
	Type  string `xml:"type,attr"`
	ID    int    `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

// Link types BGG uses for the tag collections we keep.
const (
	linkCategory  = "boardgamecategory"
	linkMechanic  = "boardgamemechanic"
	linkFamily    = "boardgamefamily"
	linkPublisher = "boardgamepublisher"

	typeExpansion = "boardgameexpansion"
)
