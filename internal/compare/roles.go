package compare

import "strings"

var roleAliases = map[string]string{
	"TOP":     "TOP",
	"JUNGLE":  "JUNGLE",
	"MID":     "MIDDLE",
	"MIDDLE":  "MIDDLE",
	"ADC":     "BOTTOM",
	"BOT":     "BOTTOM",
	"BOTTOM":  "BOTTOM",
	"SUPPORT": "UTILITY",
	"SUP":     "UTILITY",
	"UTILITY": "UTILITY",
}

// NormalizeRole maps a user-facing role name onto the team-position value
// stored in match rows. Unknown values are upper-cased and passed through;
// the empty string means no role filter.
func NormalizeRole(role string) string {
	key := strings.ToUpper(strings.TrimSpace(role))
	if canonical, ok := roleAliases[key]; ok {
		return canonical
	}
	return key
}
