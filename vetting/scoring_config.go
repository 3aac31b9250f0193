package vetting

// ScoringThresholds maps the heuristic score onto a status.
type ScoringThresholds struct {
	SafeMax      int `json:"safe_max"`      // Default: 25
	DangerousMin int `json:"dangerous_min"` // Default: 85
	// Suspicious: everything in between
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		SafeMax:      25,
		DangerousMin: 85,
	}
}

// BaseScore is where every heuristic run starts ("unknown").
const BaseScore = 30

// Rule weights. Positive raises risk.
const (
	weightHTTPS              = -10
	weightNoHTTPS            = 10
	weightShortCertificate   = 15
	weightLongCertificate    = -10
	weightLongURL            = 12
	weightHighEntropy        = 10
	weightManySubdomains     = 10
	weightHyphen             = 6
	weightShortener          = 18
	weightSuspiciousTLD      = 6
	weightAtSymbol           = 30
	weightSymbolDensity      = 10
	weightPunycode           = 18
	weightBrandImpersonation = 25
	weightKeywordSingle      = 6
	weightKeywordMany        = 10
	weightMalformedURL       = 6
	weightPasswordForm       = 8
	weightBodyKeywords       = 8
	weightExternalFormAction = 30
	weightHiddenElements     = 10
)

// Rule thresholds.
const (
	shortCertificateMaxDays = 95
	longCertificateMinDays  = 365
	longURLMinLength        = 76
	highEntropyMinBits      = 4.0
	manySubdomainsMinDots   = 3
	symbolDensityMin        = 0.25
	symbolDensityMinLength  = 21
	brandMaxDistance        = 2
	maxKeywordsInReason     = 3
	hiddenElementsMin       = 21
)

// Shorteners are link-shortener hosts. They are both scored and expanded.
var Shorteners = []string{
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"goo.gl",
	"ow.ly",
	"buff.ly",
}

// SuspiciousTLDs are top-level labels often used for spam or phishing.
var SuspiciousTLDs = []string{
	"zip",
	"mov",
	"tk",
	"gq",
	"ml",
	"cf",
	"ga",
}

// Brands checked for typosquatting.
var Brands = []string{
	"google",
	"facebook",
	"apple",
	"microsoft",
	"amazon",
	"paypal",
	"netflix",
	"instagram",
	"whatsapp",
	"twitter",
	"bankofamerica",
	"chase",
	"wellsfargo",
	"hsbc",
	"citibank",
}

// SuspiciousWords are matched against the lowercased URL.
var SuspiciousWords = []string{
	"login",
	"verify",
	"update",
	"password",
	"account",
	"billing",
	"secure",
	"confirm",
	"unlock",
	"limited",
	"urgent",
}

// BodyKeywords are matched against page text by signal collectors.
var BodyKeywords = []string{
	"login",
	"verify",
	"update",
	"password",
	"account",
	"billing",
	"secure",
	"confirm",
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
