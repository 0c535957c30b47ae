package cube

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

const (
	Facelets = 54
	PerColor = 9
)

// CodeUnsolvable reports a well-formed state that the solver rejected. It is
// not produced by Validate; callers map solver.ErrUnsolvable to it.
const CodeUnsolvable = "unsolvable"

// Colors lists the face letters in the order distribution is checked.
const Colors = "UDFBLR"

var (
	ErrInvalidLength = validation.NewError("invalid_length",
		"state must contain {{.expected}} facelets; received {{.received}}")
	ErrInvalidColors = validation.NewError("invalid_colors",
		"state contains unsupported colors: {{.colors}}")
	ErrInvalidDistribution = validation.NewError("invalid_distribution",
		"color {{.color}} must appear {{.expected}} times; received {{.received}}")
)

// Normalize trims surrounding whitespace and upper-cases the state.
func Normalize(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

// Validate normalizes state and returns it as a solver request, or the
// first failed check.
func Validate(state string) (solver.Request, error) {
	normalized := Normalize(state)

	err := validation.Validate(normalized,
		validation.By(checkLength),
		validation.By(checkColors),
		validation.By(checkDistribution),
	)
	if err != nil {
		return "", err
	}
	return solver.Request(normalized), nil
}

// Code returns the validation code carried by err, or "" when err is not a
// validation failure.
func Code(err error) string {
	var verr validation.Error
	if errors.As(err, &verr) {
		return verr.Code()
	}
	return ""
}

func checkLength(value interface{}) error {
	state, _ := value.(string)
	if n := utf8.RuneCountInString(state); n != Facelets {
		return ErrInvalidLength.SetParams(map[string]interface{}{
			"expected": Facelets,
			"received": n,
		})
	}
	return nil
}

func checkColors(value interface{}) error {
	state, _ := value.(string)

	seen := make(map[string]struct{})
	for _, r := range state {
		if !strings.ContainsRune(Colors, r) {
			seen[string(r)] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	unexpected := make([]string, 0, len(seen))
	for c := range seen {
		unexpected = append(unexpected, c)
	}
	sort.Strings(unexpected)

	return ErrInvalidColors.SetParams(map[string]interface{}{
		"colors": unexpected,
	})
}

func checkDistribution(value interface{}) error {
	state, _ := value.(string)
	for _, c := range Colors {
		if n := strings.Count(state, string(c)); n != PerColor {
			return ErrInvalidDistribution.SetParams(map[string]interface{}{
				"color":    string(c),
				"expected": PerColor,
				"received": n,
			})
		}
	}
	return nil
}
