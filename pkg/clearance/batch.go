package clearance

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// Outcome is the result of one batch item, in input order. Exactly one of
// Result and Err is set.
type Outcome struct {
	Index         int     `json:"index"`
	ObstructionID string  `json:"obstruction_id"`
	Result        *Result `json:"result,omitempty"`
	Err           error   `json:"-"`
	ErrorKind     string  `json:"error_kind,omitempty"`
	ErrorMessage  string  `json:"error,omitempty"`
}

// OK reports whether the item was evaluated.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

func failed(i int, id string, err error) Outcome {
	out := Outcome{Index: i, ObstructionID: id, Err: err, ErrorMessage: err.Error()}
	if k := linkerr.KindOf(err); k != 0 {
		out.ErrorKind = k.String()
	}
	return out
}

// EvaluateAll evaluates every obstruction against path and returns one
// Outcome per input, in input order. A failing item never affects the
// others. An obstruction whose ID was already seen earlier in the list fails
// with an input validation error. prof may be nil; it is only consulted for
// obstructions without a base elevation.
//
// Items run on up to Config.Workers goroutines. Once ctx is done no further
// items are started and the remaining ones report ctx.Err().
func (e *Evaluator) EvaluateAll(ctx context.Context, path link.Path, prof *profile.Profile, obstructions []link.Obstruction, frequencyGHz float64) []Outcome {
	out := make([]Outcome, len(obstructions))

	seen := make(map[string]int, len(obstructions))
	dup := make([]bool, len(obstructions))
	for i, o := range obstructions {
		if o.ID == "" {
			continue
		}
		if _, ok := seen[o.ID]; ok {
			dup[i] = true
			continue
		}
		seen[o.ID] = i
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)

	for i, o := range obstructions {
		if dup[i] {
			out[i] = failed(i, o.ID, linkerr.Invalid("id", "duplicate obstruction id %q (first at index %d)", o.ID, seen[o.ID]))
			continue
		}
		if err := ctx.Err(); err != nil {
			out[i] = failed(i, o.ID, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i] = failed(i, o.ID, err)
				return nil
			}
			var (
				res Result
				err error
			)
			if prof != nil {
				res, err = e.EvaluateOnProfile(path, *prof, o, frequencyGHz)
			} else {
				res, err = e.Evaluate(path, o, frequencyGHz)
			}
			if err != nil {
				out[i] = failed(i, o.ID, err)
				return nil
			}
			out[i] = Outcome{Index: i, ObstructionID: o.ID, Result: &res}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
