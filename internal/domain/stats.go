package domain

// PlayStats aggregates a user's play history for the dashboard.
type PlayStats struct {
	TotalGames   int            `json:"total_games"`
	TotalPlays   int            `json:"total_plays"`
	Favorites    int            `json:"favorites"`
	ForSale      int            `json:"for_sale"`
	NeverPlayed  int            `json:"never_played"`
	MostPlayed   []GamePlays    `json:"most_played,omitempty"`
	PlaysByMonth []MonthlyPlays `json:"plays_by_month,omitempty"`
}

// GamePlays pairs a game with its play count for ranking views.
type GamePlays struct {
	GameID string `json:"game_id"`
	Title  string `json:"title"`
	Plays  int    `json:"plays"`
}

// MonthlyPlays counts plays in one calendar month ("2026-08" form).
type MonthlyPlays struct {
	Month string `json:"month"`
	Plays int    `json:"plays"`
}
