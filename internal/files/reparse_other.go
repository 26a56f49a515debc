//go:build !windows

package files

// Reparse points are a Windows concept; Lstat already catches symlinks here.
func isReparsePoint(string) (bool, error) {
	return false, nil
}
