package intent

import "regexp"

// TargetSendMoney is the navigation target of the money-transfer route.
// Matches against this target trigger parameter extraction and the transfer
// prefill notification.
const TargetSendMoney = "/send-money"

// Route pairs a navigable target with the phrases that trigger it and the
// localized confirmation spoken after navigating. Multiple routes may share a
// target; table order encodes priority (first match wins).
type Route struct {
	// Target is the navigation path sent to the UI (e.g. "/withdraw").
	Target string

	// Keywords holds the raw (un-normalized) trigger phrases per locale, in
	// priority order.
	Keywords map[Locale][]string

	// Messages holds the spoken confirmation per locale.
	Messages map[Locale]string

	// Romanized is a Latin transliteration of the Kannada confirmation,
	// spoken through an English voice when no Kannada voice is installed.
	Romanized string
}

// Message returns the confirmation text for loc, falling back to English.
func (r *Route) Message(loc Locale) string {
	if msg, ok := r.Messages[loc]; ok && msg != "" {
		return msg
	}
	return r.Messages[LocaleEnglish]
}

// keywordPattern is one pre-normalized keyword with its compiled whole-word
// regexp. Built once per table; never mutated per utterance.
type keywordPattern struct {
	text string
	word *regexp.Regexp
}

// Table is the immutable, ordered route table plus the normalized keyword
// index derived from it. Construct with [NewTable]; safe for concurrent use
// afterwards.
type Table struct {
	routes []Route
	index  [][]keywordPattern
}

// NewTable builds a Table from routes, normalizing every keyword and
// compiling its whole-word pattern up front. The keyword index flattens each
// route's per-locale lists in [Locales] order, preserving the listed order
// within a locale.
func NewTable(routes []Route) *Table {
	t := &Table{
		routes: routes,
		index:  make([][]keywordPattern, len(routes)),
	}
	for i, r := range routes {
		var patterns []keywordPattern
		for _, loc := range Locales {
			for _, kw := range r.Keywords[loc] {
				n := Normalize(kw)
				if n == "" {
					continue
				}
				patterns = append(patterns, keywordPattern{
					text: n,
					word: regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`),
				})
			}
		}
		t.index[i] = patterns
	}
	return t
}

// Len returns the number of routes in the table.
func (t *Table) Len() int { return len(t.routes) }

// Route returns a pointer to the i-th route. The caller must not modify it.
func (t *Table) Route(i int) *Route { return &t.routes[i] }

// DefaultRoutes returns the built-in banking route table. Order is
// significant: the loans route deliberately comes after the home/balance
// route because both respond to overlapping vocabulary, and the earlier
// entry must win.
func DefaultRoutes() []Route {
	return []Route{
		{
			Target: "/transactions",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"transaction", "transactions", "recent", "last"},
				LocaleHindi:   {"लेन-देन", "ट्रांजैक्शन", "len den", "len-den", "len"},
				LocaleKannada: {"ವಹಿವಾಟು", "ಟ್ರಾನ್ಸಾಕ್ಷನ್", "vahivatu", "vahivaatu"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Showing your transactions",
				LocaleHindi:   "आपके लेन-देन दिखा रहे हैं",
				LocaleKannada: "ನಿಮ್ಮ ವಹಿವಾಟುಗಳನ್ನು ತೋರಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "nimma vahivaatugalu torisalaaguttide",
		},
		{
			Target: "/auth",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"auth", "login", "log in", "sign in", "signin", "sign up", "signup", "register", "logout", "log out"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Opening authentication",
				LocaleHindi:   "लॉगिन पेज खोल रहे हैं",
				LocaleKannada: "ಲಾಗಿನ್ ಪುಟ ತೆರೆಯಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "login puta tereyalaaguttide",
		},
		{
			Target: "/",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"balance", "account", "home", "dashboard", "index", "dashboard page"},
				LocaleHindi:   {"बैलेंस", "खाता", "घर", "मुख्य", "मुख्य पृष्ठ", "mera balance", "mera khata", "mera balance kya hai", "ghar"},
				LocaleKannada: {"ಬ್ಯಾಲೆನ್ಸ್", "ಖಾತೆ", "ಮುಖಪುಟ", "home page", "nanna balance", "nanna khate", "nanna account", "mukha puta", "mukhya"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Showing your account balance",
				LocaleHindi:   "आपका खाता शेष दिखा रहे हैं",
				LocaleKannada: "ನಿಮ್ಮ ಖಾತೆ ಬ್ಯಾಲೆನ್ಸ್ ತೋರಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "nimma khaate balance torisalaaguttide",
		},
		{
			Target: TargetSendMoney,
			Keywords: map[Locale][]string{
				LocaleEnglish: {"send", "transfer", "pay", "send money", "pay money"},
				LocaleHindi:   {"भेजें", "पैसे", "paise bhejo", "paise bheje", "paisa bhejo", "bhejo", "bhejna"},
				LocaleKannada: {"ಕಳುಹಿಸಿ", "ಹಣ", "kaluhisi", "kaluhisu", "hannu", "hana"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Opening send money",
				LocaleHindi:   "पैसे भेजना खोल रहे हैं",
				LocaleKannada: "ಹಣ ಕಳುಹಿಸುವುದನ್ನು ತೆರೆಯಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "hana kaluhisuvudannu tereyalaaguttide",
		},
		{
			Target: "/deposit",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"deposit"},
				LocaleHindi:   {"जमा", "डिपॉजिट", "jama", "jama karo", "jama karna"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Opening deposit",
				LocaleHindi:   "जमा खोल रहे हैं",
				LocaleKannada: "ಠೇವಣಿ ತೆರೆಯಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "thevani tereyalaaguttide",
		},
		{
			Target: "/withdraw",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"withdraw", "withdrawal"},
				LocaleHindi:   {"निकाल", "निकासी", "nikal", "nikalo", "nikalna"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Opening withdrawal",
				LocaleHindi:   "निकासी खोल रहे हैं",
				LocaleKannada: "ಹಿಂಪಡೆಯುವಿಕೆ ತೆರೆಯಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "hinpadeyuvike tereyalaaguttide",
		},
		{
			Target: "/cheque",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"cheque", "check"},
				LocaleHindi:   {"चेक", "चेक जमा", "cheque jama", "chek"},
				LocaleKannada: {"ಚೆಕ್"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Opening cheque deposit",
				LocaleHindi:   "चेक जमा खोल रहे हैं",
				LocaleKannada: "ಚೆಕ್ ನ್ನು ತೆರೆಯಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "checkannu tereyalaaguttide",
		},
		{
			Target: "/",
			Keywords: map[Locale][]string{
				LocaleEnglish: {"loan", "loans", "loan eligibility", "loan amount"},
				LocaleHindi:   {"loan ki yogita", "loan yogya", "loan ki yogyata"},
			},
			Messages: map[Locale]string{
				LocaleEnglish: "Showing eligible loans",
				LocaleHindi:   "लोन की योग्यता दिखा रहे हैं",
				LocaleKannada: "ಲೋನ್ ಯೋಗ್ಯತೆ ತೋರಿಸಲಾಗುತ್ತಿದೆ",
			},
			Romanized: "loan yogyate torisalaaguttide",
		},
	}
}
