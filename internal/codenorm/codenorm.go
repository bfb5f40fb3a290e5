// Package codenorm implements the Code Normalizer (CN): a pure function
// mapping a filename to a canonical product code, or to nothing when no
// code can be extracted.
package codenorm

import (
	"regexp"
	"strings"

	"github.com/jmylchreest/jav-meta/internal/models"
)

var (
	xxxCD1    = regexp.MustCompile(`[-_ .]CD\d{1,2}`)
	xxx1      = regexp.MustCompile(`[-_ .][A-Z0-9]\.$`)
	ymd1      = regexp.MustCompile(`\d{4}[-_.]\d{1,2}[-_.]\d{1,2}`)
	ymd2      = regexp.MustCompile(`[-\[]\d{2}[-_.]\d{2}[-_.]\d{2}\]?`)
	mywifeRE  = regexp.MustCompile(`NO\.\d*`)
	cw3d2dRE  = regexp.MustCompile(`CW3D2D?BD-?\d{2,}`)
	mmrRE     = regexp.MustCompile(`MMR-?[A-Z]{2,}-?\d+[A-Z]*`)
	mdRE      = regexp.MustCompile(`([^A-Z]|^)(MD[A-Z-]*\d{4,}(-\d)?)`)
	oumeiRE   = regexp.MustCompile(`([A-Z0-9_]{2,})[-.]2?0?(\d{2}[-.]\d{2}[-.]\d{2})`)
	xxxAvRE   = regexp.MustCompile(`XXX-AV-\d{4,}`)
	mkyRE     = regexp.MustCompile(`(MKY-[A-Z]+)-\d{3,}`)
	fc2RE     = regexp.MustCompile(`FC2-\d{5,}`)
	heyzoRE   = regexp.MustCompile(`HEYZO-\d{3,}`)
	h4610RE   = regexp.MustCompile(`(H4610|C0930|H0930)-[A-Z]+\d{4,}`)
	kin8RE    = regexp.MustCompile(`KIN8(TENGOKU)?-?\d{3,}`)
	s2mRE     = regexp.MustCompile(`S2M[BD]*-\d{3,}`)
	mcb3dRE   = regexp.MustCompile(`MCB3D[BD]*-\d{2,}`)
	t28RE     = regexp.MustCompile(`T28-?\d{3,}`)
	th101RE   = regexp.MustCompile(`TH101-\d{3,}-\d{5,}`)
	azRE      = regexp.MustCompile(`([A-Z]{2,})00(\d{3})`)
	numAzRE   = regexp.MustCompile(`\d{2,}[A-Z]{2,}-\d{2,}[A-Z]?`)
	azNumRE   = regexp.MustCompile(`[A-Z]{2,}-\d{2,}`)
	azAzNumRE = regexp.MustCompile(`[A-Z]+-[A-Z]\d+`)
	numNumRE  = regexp.MustCompile(`\d{2,}[-_]\d{2,}`)
	numAzRE2  = regexp.MustCompile(`\d{3,}-[A-Z]{3,}`)
	nRE       = regexp.MustCompile(`([^A-Z]|^)(N\d{4})(\D|$)`)
	hRE       = regexp.MustCompile(`H_\d{3,}([A-Z]{2,})(\d{2,})`)
	az3Num2RE = regexp.MustCompile(`([A-Z]{3,}).*?(\d{2,})`)
	az2Num3RE = regexp.MustCompile(`([A-Z]{2,}).*?(\d{3,})`)

	nxxxxRE       = regexp.MustCompile(`n\d{4}`)
	unsensoredRE  = regexp.MustCompile(`[^.]+\.\d{2}\.\d{2}\.\d{2}`)
	prefixRE      = regexp.MustCompile(`([A-Za-z0-9-.]{3,})[-_. ]\d{2}\.\d{2}\.\d{2}`)
	allCodeRE     = regexp.MustCompile(`(\d*[A-Za-z]+)\d*`)
)

var uselessWords = []string{
	"H_720",
	"2048论坛@FUN2048.COM",
	"1080P",
	"720P",
	"22-SHT.ME",
	"-HD",
	"BBS2048.ORG@",
	"HHD800.COM@",
	"KFA55.COM@",
	"ICAO.ME@",
	"HHB_000",
	"[456K.ME]",
	"[THZU.CC]",
}

// uncensoredPrefixes lists fixed car-plate-style prefixes known to be
// uncensored regardless of the N\d{4}/date-suffix heuristics.
var uncensoredPrefixes = []string{
	"BT-", "CT-", "EMP-", "CCDV-", "CWP-", "CWPBD-", "DSAM-", "DRC-", "DRG-", "GACHI-", "heydouga",
	"JAV-", "LAF-", "LAFBD-", "HEYZO-", "KTG-", "KP-", "KG-", "LLDV-", "MCDV-", "MKD-", "MKBD-",
	"MMDV-", "NIP-", "PB-", "PT-", "QE-", "RED-", "RHJ-", "S2M-", "SKY-", "SKYHD-", "SMD-",
	"SSDV-", "SSKP-", "TRG-", "TS-", "XXX-AV-", "YKB-", "BIRD", "BOUGA",
}

// GetMovieCode derives a canonical product code from a filename, returning
// ("", false) when no code can be extracted.
func GetMovieCode(name string) (models.Code, bool) {
	upper := strings.ToUpper(name)

	for _, word := range uselessWords {
		upper = strings.ReplaceAll(upper, word, "")
	}

	upper = strings.ReplaceAll(upper, "-C", ".")
	upper = strings.ReplaceAll(upper, ".PART", "-CD")
	upper = strings.ReplaceAll(upper, "-PART", "-CD")
	upper = strings.ReplaceAll(upper, " EP.", ".EP")
	upper = strings.ReplaceAll(upper, "-CD-", "")

	upper = xxxCD1.ReplaceAllString(upper, "")
	upper = xxx1.ReplaceAllString(upper, "")
	upper = strings.ReplaceAll(upper, " ", "-")
	upper = strings.Trim(upper, "-_.")

	upper = ymd1.ReplaceAllString(upper, "")
	upper = ymd2.ReplaceAllString(upper, "")

	upper = strings.ReplaceAll(upper, "FC2-PPV", "FC2-")
	upper = strings.ReplaceAll(upper, "FC2PPV", "FC2-")
	upper = strings.ReplaceAll(upper, "GACHIPPV", "GACHI")
	upper = strings.ReplaceAll(upper, "--", "-")

	code, ok := extractMovieCode(upper)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(code, "FC-") {
		code = strings.Replace(code, "FC-", "FC2-", 1)
	}
	code = strings.Trim(code, "-_.")

	return models.Code(code), true
}

func extractMovieCode(filename string) (string, bool) {
	switch {
	case strings.Contains(filename, "MYWIFE") && mywifeRE.MatchString(filename):
		num := mywifeRE.FindString(filename)
		return "Mywife No." + strings.TrimPrefix(num, "NO."), true

	case cw3d2dRE.MatchString(filename):
		return cw3d2dRE.FindString(filename), true

	case mmrRE.MatchString(filename):
		return strings.Replace(mmrRE.FindString(filename), "MMR-", "MMR", 1), true

	case mdRE.MatchString(filename):
		if strings.Contains(filename, "MDVR") {
			return "", false
		}
		m := mdRE.FindStringSubmatch(filename)
		return m[2], true

	case oumeiRE.MatchString(filename):
		m := oumeiRE.FindStringSubmatch(filename)
		return m[1] + "." + strings.ReplaceAll(m[2], "-", "."), true

	case xxxAvRE.MatchString(filename):
		return xxxAvRE.FindString(filename), true

	case mkyRE.MatchString(filename):
		return mkyRE.FindString(filename), true

	case strings.Contains(filename, "FC2"):
		fc2name := strings.ReplaceAll(filename, "PPV", "")
		fc2name = strings.ReplaceAll(fc2name, "_", "-")
		fc2name = strings.ReplaceAll(fc2name, "--", "-")
		if fc2RE.MatchString(fc2name) {
			return fc2RE.FindString(fc2name), true
		}
		return fc2name, true

	case strings.Contains(filename, "HEYZO"):
		heyzoName := strings.ReplaceAll(filename, "_", "-")
		heyzoName = strings.ReplaceAll(heyzoName, "--", "-")
		if heyzoRE.MatchString(heyzoName) {
			return heyzoRE.FindString(heyzoName), true
		}
		return heyzoName, true

	case h4610RE.MatchString(filename):
		return h4610RE.FindString(filename), true

	case kin8RE.MatchString(filename):
		s := strings.ReplaceAll(kin8RE.FindString(filename), "TENGOKU", "-")
		return strings.ReplaceAll(s, "--", "-"), true

	case s2mRE.MatchString(filename):
		return s2mRE.FindString(filename), true

	case mcb3dRE.MatchString(filename):
		return mcb3dRE.FindString(filename), true

	case t28RE.MatchString(filename):
		return strings.Replace(t28RE.FindString(filename), "T2800", "T28-", 1), true

	case th101RE.MatchString(filename):
		return strings.ToLower(th101RE.FindString(filename)), true

	case azRE.MatchString(filename):
		m := azRE.FindStringSubmatch(filename)
		return m[1] + "-" + m[2], true

	case numAzRE.MatchString(filename):
		return numAzRE.FindString(filename), true

	case azNumRE.MatchString(filename):
		return azNumRE.FindString(filename), true

	case azAzNumRE.MatchString(filename):
		return azAzNumRE.FindString(filename), true

	case numNumRE.MatchString(filename):
		return numNumRE.FindString(filename), true

	case numAzRE2.MatchString(filename):
		return numAzRE2.FindString(filename), true

	case nRE.MatchString(filename):
		m := nRE.FindStringSubmatch(filename)
		return strings.ToLower(m[2]), true

	case hRE.MatchString(filename):
		m := hRE.FindStringSubmatch(filename)
		return m[1] + "-" + m[2], true

	case az3Num2RE.MatchString(filename):
		m := az3Num2RE.FindStringSubmatch(filename)
		return m[1] + "-" + m[2], true

	case az2Num3RE.MatchString(filename):
		m := az2Num3RE.FindStringSubmatch(filename)
		return m[1] + "-" + m[2], true

	default:
		replacer := strings.NewReplacer(
			"[", "", "]", "", "(", "", ")", "",
			"【", "", "】", "", "（", "", "）", "",
		)
		return strings.TrimSpace(replacer.Replace(filename)), true
	}
}

// IsUncensored matches the Western name.YY.MM.DD pattern, nNNNN, or a fixed
// uncensored-prefix set.
func IsUncensored(code models.Code) bool {
	s := string(code)
	if nxxxxRE.MatchString(s) || unsensoredRE.MatchString(s) {
		return true
	}
	for _, prefix := range uncensoredPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// CodePrefix extracts the strongest-matching studio/series prefix from
// code, used by the officials and prestige adapters to pick a site.
func CodePrefix(code models.Code) (string, bool) {
	s := string(code)

	switch {
	case prefixRE.MatchString(s):
		return prefixRE.FindStringSubmatch(s)[1], true
	case strings.HasPrefix(s, "FC2"):
		return "FC2", true
	case strings.HasPrefix(s, "Mywife"):
		return "Mywife", true
	case strings.HasPrefix(s, "KIN8"):
		return "KIN8", true
	case strings.HasPrefix(s, "S2M"):
		return "S2M", true
	case strings.HasPrefix(s, "T28"):
		return "T28", true
	case strings.HasPrefix(s, "TH101"):
		return "TH101", true
	case strings.HasPrefix(s, "XXX-AV"):
		return "XXX-AV", true
	case mkyRE.MatchString(s):
		return mkyRE.FindStringSubmatch(s)[1], true
	case cw3d2dRE.MatchString(s):
		return "CW3D2D", true
	case mcb3dRE.MatchString(s):
		return "MCB3D", true
	case h4610RE.MatchString(s):
		return h4610RE.FindStringSubmatch(s)[1], true
	case allCodeRE.MatchString(s):
		return allCodeRE.FindStringSubmatch(s)[1], true
	default:
		return "", false
	}
}
