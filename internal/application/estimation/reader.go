package estimation

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// maxLineBytes bounds one input line.
const maxLineBytes = 1 << 20

// ReadCompounds parses a compound list: one compound per line as
// "SMILES [name]", where the name is the rest of the line.  Blank lines and
// lines starting with '#' are skipped.  SMILES are not checked here.
func ReadCompounds(r io.Reader) ([]stypes.CompoundInput, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var out []stypes.CompoundInput
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		smiles, name := text, ""
		if i := strings.IndexAny(text, " \t"); i >= 0 {
			smiles, name = text[:i], strings.TrimSpace(text[i+1:])
		}
		out = append(out, stypes.CompoundInput{SMILES: smiles, Name: name})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputReadFailed, "reading compound list").WithDetailf("after line %d", line)
	}
	return out, nil
}

// ReadCompoundsFile is ReadCompounds on the file at path; "-" reads stdin.
func ReadCompoundsFile(path string) ([]stypes.CompoundInput, error) {
	if path == "-" {
		return ReadCompounds(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputReadFailed, "opening compound list").WithDetail(path)
	}
	defer f.Close()
	return ReadCompounds(f)
}

//Personal.AI order the ending
