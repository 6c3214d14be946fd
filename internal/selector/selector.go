// Package selector asks the user which input file and which essay to use.
package selector

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

// Prompts shown to the user.
const (
	PathPrompt   = "Digite o nome do arquivo JSON a ser processado: "
	IndexPrompt  = "Número da redação: "
	NotANumber   = "Digite um número válido."
	OutOfRange   = "Número inválido. Tente novamente."
	chooseHeader = "Existem %d redações no arquivo. Escolha um número entre 1 e %d:\n"
)

// Prompter reads answers line by line from one input stream.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Path asks for the input file path.
func (p *Prompter) Path() (string, error) {
	fmt.Fprint(p.out, PathPrompt)
	return p.readLine()
}

// Index asks for a 1-based essay index in [1, n] and keeps asking until
// one is given. It fails only when the input ends.
func (p *Prompter) Index(n int) (int, error) {
	fmt.Fprintf(p.out, chooseHeader, n, n)

	for {
		fmt.Fprint(p.out, IndexPrompt)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(p.out, NotANumber)
			continue
		}
		if choice < 1 || choice > n {
			fmt.Fprintln(p.out, OutOfRange)
			continue
		}
		return choice, nil
	}
}

func (p *Prompter) readLine() (string, error) {
	if p.in.Scan() {
		return p.in.Text(), nil
	}
	err := p.in.Err()
	if err == nil {
		err = io.EOF
	}
	return "", apperror.Wrap(apperror.KindUnexpected, err, "entrada encerrada")
}
