package runtime

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

var (
	randomMu   sync.Mutex
	randomRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SeedRandom makes RANDOM reproducible.
func SeedRandom(seed int64) {
	randomMu.Lock()
	randomRand.Seed(seed)
	randomMu.Unlock()
}

func installPrimitives(in *lang.Interpreter) {
	define := in.Define

	define("DISPLAY", primDisplay)
	define("INPUT", primInput)
	define("APPEND", primAppend)
	define("LENGTH", primLength)
	define("REMOVE", primRemove)
	define("INSERT", primInsert)
	define("RANDOM", primRandom)
}

func primDisplay(ctx context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "DISPLAY", args, 1); err != nil {
		return lang.Value{}, err
	}
	if err := in.Display(ctx, args[0]); err != nil {
		return lang.Value{}, err
	}
	return lang.Void, nil
}

func primInput(ctx context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "INPUT", args, 0); err != nil {
		return lang.Value{}, err
	}
	text, err := in.WaitForInput(ctx)
	if err != nil {
		return lang.Value{}, err
	}
	return parseInput(text), nil
}

// parseInput turns host text into a number when it looks numeric and keeps
// it as a string otherwise. Blank input stays a string.
func parseInput(text string) lang.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return lang.StringValue(text)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return lang.StringValue(text)
	}
	return lang.NumberValue(f)
}

func primAppend(_ context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "APPEND", args, 2); err != nil {
		return lang.Value{}, err
	}
	list, err := listArg(in, call, args, 0)
	if err != nil {
		return lang.Value{}, err
	}
	list.Items = append(list.Items, args[1])
	return lang.Void, nil
}

func primLength(_ context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "LENGTH", args, 1); err != nil {
		return lang.Value{}, err
	}
	list, err := listArg(in, call, args, 0)
	if err != nil {
		return lang.Value{}, err
	}
	return lang.NumberValue(float64(len(list.Items))), nil
}

func primRemove(_ context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "REMOVE", args, 2); err != nil {
		return lang.Value{}, err
	}
	list, err := listArg(in, call, args, 0)
	if err != nil {
		return lang.Value{}, err
	}
	index, err := numberArg(in, call, args, 1)
	if err != nil {
		return lang.Value{}, err
	}
	i, err := in.CheckIndex(call.Args[1], call.Args[0], index, len(list.Items))
	if err != nil {
		return lang.Value{}, err
	}
	removed := list.Items[i]
	list.Items = append(list.Items[:i], list.Items[i+1:]...)
	return removed, nil
}

func primInsert(_ context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "INSERT", args, 3); err != nil {
		return lang.Value{}, err
	}
	list, err := listArg(in, call, args, 0)
	if err != nil {
		return lang.Value{}, err
	}
	index, err := numberArg(in, call, args, 1)
	if err != nil {
		return lang.Value{}, err
	}
	// Inserting one past the end appends.
	i, err := in.CheckIndex(call.Args[1], call.Args[0], index, len(list.Items)+1)
	if err != nil {
		return lang.Value{}, err
	}
	list.Items = append(list.Items, lang.Value{})
	copy(list.Items[i+1:], list.Items[i:])
	list.Items[i] = args[2]
	return lang.Void, nil
}

func primRandom(_ context.Context, in *lang.Interpreter, call *parser.CallExpr, args []lang.Value) (lang.Value, error) {
	if err := in.CheckArity(call, "RANDOM", args, 2); err != nil {
		return lang.Value{}, err
	}
	var bounds [2]int64
	for i := range bounds {
		n, err := numberArg(in, call, args, i)
		if err != nil {
			return lang.Value{}, err
		}
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return lang.Value{}, in.Errorf(call.Args[i], "must be an integer")
		}
		bounds[i] = int64(n)
	}
	low, high := bounds[0], bounds[1]
	if low > high {
		return lang.Value{}, in.Errorf(call, "RANDOM needs the first bound to be <= the second")
	}
	randomMu.Lock()
	result := low + randomRand.Int63n(high-low+1)
	randomMu.Unlock()
	return lang.NumberValue(float64(result)), nil
}

func listArg(in *lang.Interpreter, call *parser.CallExpr, args []lang.Value, i int) (*lang.List, error) {
	if err := in.Expect(call.Args[i], args[i], lang.TypeList); err != nil {
		return nil, err
	}
	return args[i].List(), nil
}

func numberArg(in *lang.Interpreter, call *parser.CallExpr, args []lang.Value, i int) (float64, error) {
	if err := in.Expect(call.Args[i], args[i], lang.TypeNumber); err != nil {
		return 0, err
	}
	return args[i].Num(), nil
}
