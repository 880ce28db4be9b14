package curve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrUnknownCurve = errors.New("unknown curve")
	ErrArity        = errors.New("wrong number of curve arguments")
	ErrArgument     = errors.New("invalid curve argument")
)

// Grammar:
//
//	curve := Ident [ "(" arg { "," arg } ")" ]
//	arg   := curve | Number [ ":" Number ]
type callNode struct {
	Name string     `@Ident`
	Args []*argNode `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

type argNode struct {
	Call  *callNode  `  @@`
	Point *pointNode `| @@`
}

type pointNode struct {
	X float64  `@Number`
	Y *float64 `( ":" @Number )?`
}

var curveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Number", Pattern: `[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),:]`},
})

var curveParser = participle.MustBuild[callNode](
	participle.Lexer(curveLexer),
	participle.Elide("Whitespace"),
)

// Parse builds a curve from an expression such as "logistic(10, 0.5)",
// "inverse(power(2))" or "keys(0:0, 0.5:0.2, 1:1)". An empty expression
// yields Identity.
func Parse(expr string) (Curve, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Identity, nil
	}
	node, err := curveParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("parse curve %q: %w", expr, err)
	}
	return build(node)
}

// MustParse is Parse for static tables; it panics on error.
func MustParse(expr string) Curve {
	c, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func build(n *callNode) (Curve, error) {
	name := strings.ToLower(n.Name)
	switch name {
	case "linear":
		switch len(n.Args) {
		case 0:
			return Identity, nil
		case 2:
			vals, err := numbers(name, n.Args)
			if err != nil {
				return nil, err
			}
			return Linear{Slope: vals[0], Intercept: vals[1]}, nil
		}
		return nil, arity(name, "0 or 2", len(n.Args))
	case "power", "pow":
		vals, err := exactNumbers(name, n.Args, 1)
		if err != nil {
			return nil, err
		}
		return Power{Exponent: vals[0]}, nil
	case "quadratic":
		if len(n.Args) != 0 {
			return nil, arity(name, "0", len(n.Args))
		}
		return Power{Exponent: 2}, nil
	case "logistic", "sigmoid":
		vals, err := exactNumbers(name, n.Args, 2)
		if err != nil {
			return nil, err
		}
		return Logistic{Steepness: vals[0], Midpoint: vals[1]}, nil
	case "inverse", "invert":
		switch len(n.Args) {
		case 0:
			return Inverse{}, nil
		case 1:
			if n.Args[0].Call == nil {
				return nil, fmt.Errorf("%s: %w: expected a curve", name, ErrArgument)
			}
			inner, err := build(n.Args[0].Call)
			if err != nil {
				return nil, err
			}
			return Inverse{Inner: inner}, nil
		}
		return nil, arity(name, "0 or 1", len(n.Args))
	case "step":
		vals, err := exactNumbers(name, n.Args, 1)
		if err != nil {
			return nil, err
		}
		return Step{Threshold: vals[0]}, nil
	case "const", "constant":
		vals, err := exactNumbers(name, n.Args, 1)
		if err != nil {
			return nil, err
		}
		return Const{Value: vals[0]}, nil
	case "keys", "keyframes":
		if len(n.Args) == 0 {
			return nil, arity(name, "at least 1", 0)
		}
		pts := make([]Point, 0, len(n.Args))
		for i, a := range n.Args {
			if a.Point == nil || a.Point.Y == nil {
				return nil, fmt.Errorf("%s arg %d: %w: expected x:y", name, i, ErrArgument)
			}
			pts = append(pts, Point{X: a.Point.X, Y: *a.Point.Y})
		}
		return NewKeyframes(pts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, n.Name)
}

func exactNumbers(name string, args []*argNode, want int) ([]float64, error) {
	if len(args) != want {
		return nil, arity(name, fmt.Sprint(want), len(args))
	}
	return numbers(name, args)
}

func numbers(name string, args []*argNode) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for i, a := range args {
		if a.Point == nil || a.Point.Y != nil {
			return nil, fmt.Errorf("%s arg %d: %w: expected a number", name, i, ErrArgument)
		}
		out = append(out, a.Point.X)
	}
	return out, nil
}

func arity(name, want string, got int) error {
	return fmt.Errorf("%s: %w (want %s, got %d)", name, ErrArity, want, got)
}
