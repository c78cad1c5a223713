package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/raoulx24/flameup/internal/errors"
)

var commentPrefixes = []string{"#", "//", "--"}

// ReadSourcePath returns the source directory named in a path file: the
// first line that is neither blank nor a comment, trimmed.
func ReadSourcePath(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "cannot open config file %s", path), errors.ErrConfig)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isComment(line) {
			continue
		}
		return line, nil
	}
	if err := sc.Err(); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "reading config file %s", path), errors.ErrConfig)
	}
	return "", errors.Mark(errors.Newf("no valid path found in file: %s", path), errors.ErrConfig)
}

func isComment(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
