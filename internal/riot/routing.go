package riot

import (
	"fmt"
	"strings"
)

const defaultRouting = "americas"

var platformRouting = map[string]string{
	"na1": "americas",
	"br1": "americas",
	"la1": "americas",
	"la2": "americas",

	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",

	"kr":  "asia",
	"jp1": "asia",

	"oc1": "sea",
	"ph2": "sea",
	"sg2": "sea",
	"th2": "sea",
	"tw2": "sea",
	"vn2": "sea",
}

// RoutingForPlatform maps a platform id (na1, euw1, kr...) to its regional
// routing value. Unknown platforms fall back to americas.
func RoutingForPlatform(platform string) string {
	if r, ok := platformRouting[strings.ToLower(platform)]; ok {
		return r
	}
	return defaultRouting
}

// ParseRiotID splits "GameName#TagLine".
func ParseRiotID(riotID string) (gameName, tagLine string, err error) {
	i := strings.LastIndex(riotID, "#")
	if i <= 0 || i == len(riotID)-1 {
		return "", "", fmt.Errorf("invalid riot id %q: expected GameName#TagLine", riotID)
	}
	return strings.TrimSpace(riotID[:i]), strings.TrimSpace(riotID[i+1:]), nil
}
