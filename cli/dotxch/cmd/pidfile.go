package cmd

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"
)

const pidFile = ".dotxch_pid.lock"

func writePid(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

func readPid(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// releasePid removes path when it still names pid.
func releasePid(path string, pid int) error {
	got, err := readPid(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil || got != pid {
		return err
	}
	return os.Remove(path)
}

// stopPid terminates the process recorded in path and removes the file,
// also when the process is already gone.
func stopPid(path string) (alive bool, err error) {
	pid, err := readPid(path)
	if err != nil {
		return false, err
	}
	proc, err := os.FindProcess(pid)
	if err == nil {
		err = proc.Signal(syscall.SIGTERM)
	}
	switch {
	case err == nil:
		alive = true
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
	default:
		return false, err
	}
	return alive, os.Remove(path)
}
