package llm

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Field separators keep ("ab","c") and ("a","bc") from hashing alike.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	groupSep  = "\x1d"
)

// DeriveKey hashes the normalized conversation together with the model and
// prompt identifiers. Message order matters. Roles are case-folded and
// content is trimmed; nothing else is normalized.
func DeriveKey(messages []Message, model, promptID string) string {
	d := xxhash.New()
	for _, m := range messages {
		_, _ = d.WriteString(strings.ToLower(strings.TrimSpace(string(m.Role))))
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(strings.TrimSpace(m.Content))
		_, _ = d.WriteString(recordSep)
	}
	_, _ = d.WriteString(groupSep)
	_, _ = d.WriteString(model)
	_, _ = d.WriteString(groupSep)
	_, _ = d.WriteString(promptID)

	return strconv.FormatUint(d.Sum64(), 16)
}
