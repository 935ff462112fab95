// Package avatar derives default profile pictures from email addresses.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// GravatarURL returns the Gravatar image URL for email. Gravatar keys images by
// the MD5 of the trimmed, lower-cased address; d=identicon gives addresses
// without an uploaded picture a generated one.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("%s%s?d=identicon", gravatarBase, hex.EncodeToString(sum[:]))
}
