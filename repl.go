package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sergev/pseudo/parser"
)

func runBufferedREPL(c *console) {
	var buffer strings.Builder

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if buffer.Len() == 0 && line == "" {
					return
				}
			} else {
				fmt.Fprintf(c.errOut, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(line)
		src := buffer.String()
		stmts, parseErr := parser.Parse(src)
		if parseErr != nil {
			if parser.IsIncomplete(parseErr) && !errors.Is(err, io.EOF) {
				continue
			}
			fmt.Fprintf(c.errOut, "parse error: %v\n", parseErr)
			buffer.Reset()
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}
		buffer.Reset()
		if len(stmts) > 0 {
			c.runInput(src, stmts)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

func runInteractiveREPL(c *console, historyPath string) {
	state := c.line
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := "pseudo> "
		if buffer.Len() > 0 {
			prompt = "....... "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(c.out)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(c.out)
				return
			default:
				fmt.Fprintf(c.errOut, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		stmts, parseErr := parser.Parse(src)
		if parseErr != nil {
			if parser.IsIncomplete(parseErr) {
				continue
			}
			fmt.Fprintf(c.errOut, "parse error: %v\n", parseErr)
			buffer.Reset()
			continue
		}

		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		if len(stmts) > 0 {
			c.runInput(src, stmts)
		}
	}
}
