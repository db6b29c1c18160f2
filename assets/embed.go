package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed reserved.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// ReservedNames lists player names that may not be used, lowercased.
func ReservedNames() ([]string, error) {
	return readLines("reserved.txt")
}

// Migrations returns the embedded SQL migrations rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return sub
}
