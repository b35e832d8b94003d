package disk

import (
	"strconv"
	"strings"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
)

// Cursor tracks the position within a numbered file sequence.
type Cursor struct {
	Directory string
	Prefix    string
	Extension string
	Index     uint
	Step      uint
	ZeroPad   uint
}

// FileName synthesises the path of the file at the cursor's index:
// directory, prefix, the zero padded index and the extension. An index
// wider than ZeroPad digits is written in full.
func (c Cursor) FileName() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(c.Directory, "/"))
	sb.WriteByte('/')
	sb.WriteString(c.Prefix)
	sb.WriteString(Pad(c.Index, c.ZeroPad))
	sb.WriteString(c.Extension)
	return sb.String()
}

// advance moves the index on by Step. An index which would pass the
// largest representable frame number is left where it is.
func (c *Cursor) advance() error {
	next := c.Index + c.Step
	if next < c.Index {
		return xerror.Errorf("%w: frame number %d + %d is past the end of any sequence", frame.ErrFileNotFound, c.Index, c.Step)
	}
	c.Index = next
	return nil
}

// Pad renders v in decimal, left padded with zeros to width digits.
func Pad(v, width uint) string {
	digits := strconv.FormatUint(uint64(v), 10)
	if n := int(width) - len(digits); n > 0 {
		return strings.Repeat("0", n) + digits
	}
	return digits
}
