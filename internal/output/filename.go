package output

import (
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultHashLength is the number of hex digits [contenthash] expands to.
const DefaultHashLength = 20

var placeholderPattern = regexp.MustCompile(`\[(name|ext|contenthash)(?::(\d+))?\]`)

// ContentHash returns the hex-encoded BLAKE3 digest of data.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Filename expands an output filename template.
//
//   - [name] is the build target name.
//   - [ext] is the extension of the artifact kind, including the dot.
//   - [contenthash] is the first 20 hex digits of the BLAKE3 digest of
//     contents; [contenthash:N] keeps N digits (1 to 64).
//
// Unknown bracketed text is left alone. The result must be a relative
// path that stays inside the output directory.
func Filename(template, name, ext string, contents []byte) (string, error) {
	if template == "" {
		return "", fmt.Errorf("empty filename template")
	}

	var (
		hash      string
		expandErr error
	)

	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		sub := placeholderPattern.FindStringSubmatch(m)

		switch sub[1] {
		case "name":
			return name
		case "ext":
			return ext
		}

		n := DefaultHashLength

		if sub[2] != "" {
			v, err := strconv.Atoi(sub[2])
			if err != nil || v < 1 || v > 64 {
				expandErr = fmt.Errorf("invalid hash length in %s", m)
				return m
			}

			n = v
		}

		if hash == "" {
			hash = ContentHash(contents)
		}

		return hash[:n]
	})

	if expandErr != nil {
		return "", expandErr
	}

	clean := path.Clean(strings.ReplaceAll(out, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("filename %q escapes the output directory", out)
	}

	return clean, nil
}
