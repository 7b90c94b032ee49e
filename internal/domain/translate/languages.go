package translate

// English is the source language of every answer; translating to it is the identity.
const English = "en"

type language struct {
	code  string
	name  string
	model string
}

// 支持的目标语言，顺序即对外展示顺序
var languages = []language{
	{"hi", "Hindi", "Helsinki-NLP/opus-mt-en-hi"},
	{"fr", "French", "Helsinki-NLP/opus-mt-en-fr"},
	{"es", "Spanish", "Helsinki-NLP/opus-mt-en-es"},
	{"de", "German", "Helsinki-NLP/opus-mt-en-de"},
	{"zh", "Chinese", "Helsinki-NLP/opus-mt-en-zh"},
}

func lookup(code string) (language, bool) {
	for _, l := range languages {
		if l.code == code {
			return l, true
		}
	}
	return language{}, false
}

// IsSupported reports whether code is English or a supported translation target.
func IsSupported(code string) bool {
	if code == English {
		return true
	}
	_, ok := lookup(code)
	return ok
}

// ModelID returns the MarianMT checkpoint for code, or "" when unsupported.
func ModelID(code string) string {
	l, _ := lookup(code)
	return l.model
}

// LanguageName returns the English name of code, or "" when unsupported.
func LanguageName(code string) string {
	if code == English {
		return "English"
	}
	l, _ := lookup(code)
	return l.name
}

// SupportedCodes lists "en" followed by all translation targets.
func SupportedCodes() []string {
	codes := make([]string, 0, len(languages)+1)
	codes = append(codes, English)
	for _, l := range languages {
		codes = append(codes, l.code)
	}
	return codes
}
