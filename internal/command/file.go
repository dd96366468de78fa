package command

import "os"

// openReadOnly opens path for reading, used by book-import-solved.
func openReadOnly(path string) (*os.File, error) {
	return os.Open(path)
}
