package dataset

// MatchRow is one participant's line in one match. Rows are immutable once
// extracted; the zero value of every numeric field means "absent".
type MatchRow struct {
	Tier               string
	IndividualPosition string
	ChampionName       string
	MatchID            string
	GameDuration       int // seconds
	GameMode           string
	QueueID            int
	ChampionID         int
	TeamPosition       string

	Kills                       int
	Deaths                      int
	Assists                     int
	TotalMinionsKilled          int
	NeutralMinionsKilled        int
	GoldEarned                  int
	TotalDamageDealtToChampions int
	TotalDamageTaken            int
	VisionScore                 int

	Win         bool
	Items       [7]int
	Summoner1ID int
	Summoner2ID int
}

// Columns is the partition header, in file order.
var Columns = []string{
	"tier", "individualPosition", "championName", "matchId", "gameDuration",
	"gameMode", "queueId", "championId", "teamPosition", "kills", "deaths",
	"assists", "totalMinionsKilled", "neutralMinionsKilled", "goldEarned",
	"totalDamageDealtToChampions", "totalDamageTaken", "visionScore", "win",
	"items", "summoner1Id", "summoner2Id",
}

var requiredColumns = []string{"matchId", "gameDuration", "kills", "deaths", "assists"}
