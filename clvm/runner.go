package clvm

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/types"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrRunFailed = errors.New("clvm_run_failed")

// Runner evaluates a puzzle against a solution and returns its conditions list.
type Runner interface {
	Run(puzzle, solution *Program, maxCost uint64) (*Program, error)
}

// BrunRunner shells out to the clvm_tools brun binary. Program and solution
// reach brun as hex files, brun reads any argument that names an existing file.
type BrunRunner struct {
	Path    string
	Timeout time.Duration
}

func NewBrunRunner(path string) *BrunRunner {
	if path == "" {
		path = "brun"
	}
	return &BrunRunner{Path: path, Timeout: 10 * time.Second}
}

func (b *BrunRunner) Run(puzzle, solution *Program, maxCost uint64) (*Program, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "dotxch-brun-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunFailed, err)
	}
	defer os.RemoveAll(dir)
	puzzleFile := filepath.Join(dir, "puzzle.hex")
	solutionFile := filepath.Join(dir, "solution.hex")
	if err := writeHex(puzzleFile, puzzle); err != nil {
		return nil, err
	}
	if err := writeHex(solutionFile, solution); err != nil {
		return nil, err
	}

	args := []string{"-x", "-d"}
	if maxCost > 0 {
		args = append(args, "-m", strconv.FormatUint(maxCost, 10))
	}
	args = append(args, puzzleFile, solutionFile)
	cmd := exec.CommandContext(ctx, b.Path, args...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrRunFailed, err, strings.TrimSpace(stderr.String()))
	}
	out := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(out, "FAIL") {
		return nil, fmt.Errorf("%w: %s", ErrRunFailed, out)
	}
	// brun prints "cost = N" before the result when cost reporting is on
	lines := strings.Split(out, "\n")
	return FromHex(strings.TrimSpace(lines[len(lines)-1]))
}

func writeHex(path string, p *Program) error {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(p.Serialize())), 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrRunFailed, err)
	}
	return nil
}

// Additions runs a spend and returns the coins it creates.
func Additions(r Runner, spend types.CoinSpend, maxCost uint64) ([]CreatedCoin, []Condition, error) {
	conds, err := RunSpend(r, spend, maxCost)
	if err != nil {
		return nil, nil, err
	}
	coins, err := CreatedCoins(spend.Coin.Name(), conds)
	if err != nil {
		return nil, nil, err
	}
	return coins, conds, nil
}

// RunSpend deserializes a spend, checks the reveal and returns its parsed conditions.
func RunSpend(r Runner, spend types.CoinSpend, maxCost uint64) ([]Condition, error) {
	puzzle, err := Deserialize(spend.PuzzleReveal)
	if err != nil {
		return nil, err
	}
	solution, err := Deserialize(spend.Solution)
	if err != nil {
		return nil, err
	}
	if puzzle.TreeHash() != spend.Coin.PuzzleHash {
		return nil, fmt.Errorf("%w: puzzle reveal does not match coin", ErrRunFailed)
	}
	out, err := r.Run(puzzle, solution, maxCost)
	if err != nil {
		return nil, err
	}
	return ParseConditions(out)
}
