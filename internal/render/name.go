package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/model"
)

// emojiTable maps name patterns to a regional-flag prefix. Checked in
// order; the first match wins. Two-letter codes are word-anchored so they
// never fire inside an ordinary word.
var emojiTable = []struct {
	pattern string
	emoji   string
}{
	{`(?i)香港|\bHK\b|Hong\s?Kong`, "🇭🇰"},
	{`(?i)台湾|\bTW\b|Taiwan`, "🇹🇼"},
	{`(?i)新加坡|狮城|\bSG\b|Singapore`, "🇸🇬"},
	{`(?i)日本|\bJP\b|Japan|东京|大阪`, "🇯🇵"},
	{`(?i)美国|\bUS\b|United\s?States|洛杉矶|硅谷`, "🇺🇸"},
	{`(?i)韩国|\bKR\b|Korea|首尔`, "🇰🇷"},
	{`(?i)英国|\bUK\b|\bGB\b|United\s?Kingdom|伦敦`, "🇬🇧"},
	{`(?i)德国|\bDE\b|Germany`, "🇩🇪"},
	{`(?i)法国|\bFR\b|France`, "🇫🇷"},
	{`(?i)俄罗斯|\bRU\b|Russia|莫斯科`, "🇷🇺"},
	{`(?i)印度|\bIN\b|India`, "🇮🇳"},
	{`(?i)土耳其|\bTR\b|Turkey`, "🇹🇷"},
	{`(?i)加拿大|\bCA\b|Canada`, "🇨🇦"},
	{`(?i)澳大利亚|澳洲|\bAU\b|Australia`, "🇦🇺"},
	{`(?i)中国|\bCN\b|China|回国`, "🇨🇳"},
}

var emojiRegexps = compileEmojiTable()

func compileEmojiTable() []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, len(emojiTable))
	for i, e := range emojiTable {
		re, err := regexp2.Compile(e.pattern, regexp2.None)
		if err != nil {
			panic(fmt.Sprintf("emoji pattern %q: %v", e.pattern, err))
		}
		out[i] = re
	}
	return out
}

// renamePattern is one compiled old@new substitution. Invalid patterns log
// once at build time and become no-ops.
type renamePattern struct {
	re  *regexp2.Regexp
	new string
}

func compileRenames(pairs []model.NamePair) []renamePattern {
	out := make([]renamePattern, 0, len(pairs))
	for _, p := range pairs {
		re, err := regexp2.Compile(p.Old, regexp2.None)
		if err != nil {
			logrus.WithField("pattern", p.Old).WithError(err).Warn("重命名正则无效，忽略该条")
			continue
		}
		out = append(out, renamePattern{re: re, new: p.New})
	}
	return out
}

// prepareNames produces the final display names for the node list: rename
// substitutions, emoji decoration, type suffix, the legacy "="→"-"
// substitution, and collision suffixes. Result order matches input order;
// result[i] is the name for nodes[i].
func prepareNames(nodes []model.Proxy, opts Options) []string {
	renames := compileRenames(opts.Rename)
	used := make(map[string]struct{}, len(nodes))
	out := make([]string, len(nodes))

	for i, p := range nodes {
		base := strings.TrimSpace(p.DisplayName())
		for _, r := range renames {
			if replaced, err := r.re.Replace(base, r.new, -1, -1); err == nil {
				base = replaced
			}
		}
		if opts.RemoveOldEmoji {
			base = stripLeadingEmoji(base)
		}
		if opts.AddEmoji {
			base = addEmoji(base)
		}
		if opts.AppendProxyType {
			base = base + " [" + strings.ToUpper(string(p.Type)) + "]"
		}
		// "=" breaks the surge-family proxy line grammar; substitute
		// unconditionally so one name works for every target.
		base = strings.ReplaceAll(base, "=", "-")
		if base == "" {
			base = p.EndpointKey()
		}

		name := base
		if name == "DIRECT" || name == "REJECT" {
			name = ""
		}
		if name != "" {
			if _, ok := used[name]; ok {
				name = ""
			}
		}
		if name == "" {
			for n := 2; ; n++ {
				try := fmt.Sprintf("%s-%d", base, n)
				if _, ok := used[try]; ok {
					continue
				}
				name = try
				break
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

func addEmoji(name string) string {
	if hasLeadingEmoji(name) {
		return name
	}
	for i, re := range emojiRegexps {
		if ok, err := re.MatchString(name); err == nil && ok {
			return emojiTable[i].emoji + " " + name
		}
	}
	return name
}

// stripLeadingEmoji removes regional-indicator and symbol runes (plus any
// following space) from the front of a name.
func stripLeadingEmoji(name string) string {
	runes := []rune(name)
	i := 0
	for i < len(runes) && isEmojiRune(runes[i]) {
		i++
	}
	if i == 0 {
		return name
	}
	return strings.TrimLeft(string(runes[i:]), " ")
}

func hasLeadingEmoji(name string) bool {
	for _, r := range name {
		return isEmojiRune(r)
	}
	return false
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case unicode.Is(unicode.Variation_Selector, r):
		return true
	default:
		return false
	}
}
