package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

// consoleObserver prints progress events as they arrive.
type consoleObserver struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleObserver(w io.Writer) *consoleObserver {
	return &consoleObserver{w: w}
}

func (c *consoleObserver) Notify(e issuance.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mark := "-"
	switch e.Level {
	case issuance.LevelSuccess:
		mark = "+"
	case issuance.LevelWarn:
		mark = "!"
	case issuance.LevelError:
		mark = "x"
	}
	stage := string(e.Stage)
	if stage == "" {
		stage = "run"
	}
	line := fmt.Sprintf("%s %s [%s] %s", e.Time.Format("15:04:05"), mark, stage, e.Message)
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	fmt.Fprintln(c.w, line)
}

// readDefinition loads a token definition from a JSON file, "-" for stdin.
func readDefinition(path string) (token.Definition, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return token.Definition{}, err
		}
		defer f.Close()
		r = f
	}
	var def token.Definition
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return token.Definition{}, fmt.Errorf("parse definition: %w", err)
	}
	return def, nil
}
