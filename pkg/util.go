package pkg

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
)

// PathExists returns whether the given file or directory exists.
// An existing path of the other kind is reported as an error.
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if isDir && !stat.IsDir() {
		return false, fmt.Errorf("%s is not a directory", path)
	}
	if !isDir && stat.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}

// IntPathVar reads a positive integer mux path variable.
func IntPathVar(r *http.Request, name string) (int, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%s not set", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s [%s] is not a number", name, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s [%d] must be positive", name, v)
	}
	return v, nil
}
