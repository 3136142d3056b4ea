package riot

import "strings"

// SoloQueueID is the queue id for ranked solo/duo.
const SoloQueueID = 420

// SoloQueue is the ladder queue name for ranked solo/duo.
const SoloQueue = "RANKED_SOLO_5x5"

// Account represents the response from /riot/account/v1/accounts/by-riot-id
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Match represents the response from /lol/match/v5/matches/{matchId}
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int           `json:"gameDuration"` // seconds
	GameMode     string        `json:"gameMode"`
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
}

// Participant carries the subset of per-player fields the dataset keeps.
// Absent fields decode to their zero value.
type Participant struct {
	ParticipantID      int    `json:"participantId"`
	PUUID              string `json:"puuid"`
	ChampionID         int    `json:"championId"`
	ChampionName       string `json:"championName"`
	TeamPosition       string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	IndividualPosition string `json:"individualPosition"`

	Kills                       int `json:"kills"`
	Deaths                      int `json:"deaths"`
	Assists                     int `json:"assists"`
	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`
	GoldEarned                  int `json:"goldEarned"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken"`
	VisionScore                 int `json:"visionScore"`

	Win        bool `json:"win"`
	Item0      int  `json:"item0"`
	Item1      int  `json:"item1"`
	Item2      int  `json:"item2"`
	Item3      int  `json:"item3"`
	Item4      int  `json:"item4"`
	Item5      int  `json:"item5"`
	Item6      int  `json:"item6"` // Trinket
	Summoner1ID int `json:"summoner1Id"`
	Summoner2ID int `json:"summoner2Id"`
}

// Items returns the seven item slots in order.
func (p Participant) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// LeagueEntry represents one row of /lol/league/v4/entries/{queue}/{tier}/{division}
type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	PUUID        string `json:"puuid"`
	SummonerID   string `json:"summonerId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"` // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Tier order for comparison (higher index = higher rank)
var TierOrder = map[string]int{
	"IRON":        0,
	"BRONZE":      1,
	"SILVER":      2,
	"GOLD":        3,
	"PLATINUM":    4,
	"EMERALD":     5,
	"DIAMOND":     6,
	"MASTER":      7,
	"GRANDMASTER": 8,
	"CHALLENGER":  9,
}

// Division order (higher index = higher rank within tier)
var DivisionOrder = map[string]int{
	"IV":  0,
	"III": 1,
	"II":  2,
	"I":   3,
}

// ValidRank reports whether tier and division name a ladder the entries
// endpoint can serve. Apex tiers only have division I.
func ValidRank(tier, division string) bool {
	tierIdx, ok := TierOrder[strings.ToUpper(tier)]
	if !ok {
		return false
	}
	division = strings.ToUpper(division)
	if tierIdx >= TierOrder["MASTER"] {
		return division == "I"
	}
	_, ok = DivisionOrder[division]
	return ok
}
