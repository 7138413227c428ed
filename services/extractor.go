package services

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// priceRegexp captures the first 3-5 digit run, optionally after a '$'.
var priceRegexp = regexp.MustCompile(`\$?(\d{3,5})`)

// ExtractPrice pulls a monthly rent out of free text such as "$1,850/month".
// It returns nil when no plausible digit run is present.
func ExtractPrice(text string) *int {
	cleaned := strings.ReplaceAll(text, ",", "")
	m := priceRegexp.FindStringSubmatch(cleaned)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// DetectParkingMention reports whether text mentions parking in any case.
func DetectParkingMention(text string) bool {
	return strings.Contains(strings.ToLower(text), "parking")
}

// MatchRegion returns the first region from regions that matches any of
// texts. Each region name is used as a case-insensitive regular expression,
// so "Richmond.Hill" also matches "Richmond-Hill"; a name that does not
// compile is matched as a literal. The order of regions is the tie-break.
func MatchRegion(regions []string, texts ...string) (string, bool) {
	for _, region := range regions {
		if strings.TrimSpace(region) == "" {
			continue
		}
		re := regionPattern(region)
		for _, text := range texts {
			if re.MatchString(text) {
				return region, true
			}
		}
	}
	return "", false
}

var regionPatterns sync.Map // region name -> *regexp.Regexp

func regionPattern(region string) *regexp.Regexp {
	if re, ok := regionPatterns.Load(region); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)" + region)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(region))
	}
	regionPatterns.Store(region, re)
	return re
}
