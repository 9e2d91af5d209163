package ladder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/okian/autoleague/internal/domain/model"
)

// Decode reads one identifier per line, ignoring blank lines, and
// lower-cases them. resource names the source in errors.
func Decode(r io.Reader, resource string) ([]string, error) {
	var bots []string
	seen := make(map[string]int)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		id := model.Normalize(sc.Text())
		if id == "" {
			continue
		}
		if strings.ContainsAny(id, `/\`) {
			return nil, &model.LadderFormatError{Resource: resource, Line: line, Reason: fmt.Sprintf("invalid identifier %q", id)}
		}
		if first, dup := seen[id]; dup {
			return nil, &model.LadderFormatError{
				Resource: resource, Line: line,
				Reason: fmt.Sprintf("duplicate identifier %q (first on line %d)", id, first),
			}
		}
		seen[id] = line
		bots = append(bots, id)
	}
	if err := sc.Err(); err != nil {
		return nil, &model.LadderFormatError{Resource: resource, Reason: err.Error()}
	}
	if len(bots) == 0 {
		return nil, &model.LadderFormatError{Resource: resource, Reason: "no competitors listed"}
	}
	return bots, nil
}

// Encode writes one identifier per line.
func Encode(w io.Writer, bots []string) error {
	bw := bufio.NewWriter(w)
	for _, b := range bots {
		if _, err := bw.WriteString(b + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
