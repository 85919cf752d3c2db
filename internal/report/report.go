package report

import (
	"fmt"
	"io"

	"github.com/alvinbaena/pwdcheck/pkg/hibp"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Strength is the zxcvbn estimate of a password.
type Strength struct {
	CrackTime        float64 `json:"crack_time"`
	CrackTimeDisplay string  `json:"crack_time_display"`
	Score            int     `json:"score"`
}

func Estimate(password string) Strength {
	entropy := zxcvbn.PasswordStrength(password, nil)
	return Strength{
		CrackTime:        entropy.CrackTime,
		CrackTimeDisplay: entropy.CrackTimeDisplay,
		Score:            entropy.Score,
	}
}

// Printer writes human readable results.
type Printer struct {
	out      io.Writer
	p        *message.Printer
	strength bool
}

// NewPrinter writes to out. With strength set every result also gets a zxcvbn estimate.
func NewPrinter(out io.Writer, strength bool) *Printer {
	return &Printer{
		out:      out,
		p:        message.NewPrinter(language.English),
		strength: strength,
	}
}

func (p *Printer) Result(r hibp.Result) error {
	var err error
	if r.Pwned() {
		_, err = fmt.Fprintf(p.out, "'%s' was found %s times. I recommend you change this password anywhere you've used it.\n",
			r.Password, p.p.Sprintf("%d", r.Count))
	} else {
		_, err = fmt.Fprintf(p.out, "'%s' was not found. Safe for now!\n", r.Password)
	}
	if err != nil || !p.strength {
		return err
	}

	s := Estimate(r.Password)
	_, err = fmt.Fprintf(p.out, "  strength score %d/4, estimated crack time %s\n", s.Score, s.CrackTimeDisplay)
	return err
}

// Line writes a plain message.
func (p *Printer) Line(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
