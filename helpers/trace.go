package helpers

import (
	"runtime"
	"strings"
)

// FuncName returns the name of the calling function (easier calling in error handlers)
func FuncName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "?"
	}

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	// strip the module path, keep package.Type.Method
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
