package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	msqlite "modernc.org/sqlite"
)

func init() {
	msqlite.MustRegisterDeterministicScalarFunction("contains_fold", 2, containsFold)
}

// containsFold implements contains_fold(haystack, needle): 1 when needle occurs
// in haystack under Unicode case folding, 0 otherwise. NULL in either argument
// yields NULL. Unlike LIKE, no character in needle is special.
func containsFold(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	haystack, ok, err := textArg(args[0])
	if err != nil || !ok {
		return nil, err
	}
	needle, ok, err := textArg(args[1])
	if err != nil || !ok {
		return nil, err
	}

	if strings.Contains(Fold(haystack), Fold(needle)) {
		return int64(1), nil
	}
	return int64(0), nil
}

// Fold returns s in composed form with case differences removed
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func textArg(v driver.Value) (string, bool, error) {
	switch v := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("contains_fold: unsupported argument type %T", v)
	}
}
