package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/colourmask/internal/colour"
)

// colourList is a repeatable flag of hex colours. Each occurrence may carry a
// comma separated list.
type colourList struct {
	colours []colour.RGB
	limit   int
}

var _ pflag.Value = (*colourList)(nil)

func newColourList(limit int) *colourList {
	return &colourList{limit: limit}
}

// String implements pflag.Value.
func (l *colourList) String() string {
	hex := make([]string, len(l.colours))
	for i, c := range l.colours {
		hex[i] = c.Hex()
	}
	return strings.Join(hex, ",")
}

// Set implements pflag.Value.
func (l *colourList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := colour.ParseHex(part)
		if err != nil {
			return err
		}
		if l.limit > 0 && len(l.colours) >= l.limit {
			return fmt.Errorf("at most %d colours may be given", l.limit)
		}
		l.colours = append(l.colours, c)
	}
	return nil
}

// Type implements pflag.Value.
func (l *colourList) Type() string {
	return "colours"
}

// Colours returns the parsed colours in flag order.
func (l *colourList) Colours() []colour.RGB {
	return l.colours
}
