package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is where ReadLine reads from.
var Stdin io.Reader = os.Stdin

//ReadLine prompts input from the user delimited by a new line
func ReadLine() string {
	var all string
	var line []byte
	var err error

	hasMoreInLine := true
	bio := bufio.NewReader(Stdin)

	for hasMoreInLine {
		line, hasMoreInLine, err = bio.ReadLine()
		if err != nil {
			fmt.Println("Error: cannot read from stdin", err)
			OSExit(1)
			return ""
		}
		all += string(line)
	}

	return strings.Replace(all, "\n", "", -1)
}

// AskConfirm asks a yes/no question, anything else than y or yes meaning no.
func AskConfirm(question string) bool {
	fmt.Printf("%s (y/N) ", question)
	switch strings.ToLower(strings.TrimSpace(ReadLine())) {
	case "y", "yes":
		return true
	}
	return false
}
