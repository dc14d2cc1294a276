// Package term запрашивает у пользователя данные в интерактивном терминале.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// Terminal обеспечивает интерактивный ввод: логин, пароль, код подтверждения.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	stdinfd int

	// readPassword читает строку без эха; подменяется в тестах.
	readPassword func(fd int) ([]byte, error)
}

// NewTerminal создает новый экземпляр Terminal поверх stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		stdinfd:      int(os.Stdin.Fd()),
		readPassword: term.ReadPassword,
	}
}

// newTerminal создает Terminal с произвольными потоками. Пароль читается из in как обычная строка.
func newTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		in:      bufio.NewReader(in),
		out:     out,
		stdinfd: -1,
	}
	t.readPassword = func(int) ([]byte, error) {
		line, err := t.readLine()
		return []byte(line), err
	}
	return t
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Prompt печатает подсказку и читает строку. Пустой ввод заменяется значением def.
func (t *Terminal) Prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(t.out, "%s: ", label)
	}
	value, err := t.readLine()
	if err != nil {
		return "", xerrors.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}

// Password запрашивает пароль без эха.
func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	bytePwd, err := t.readPassword(t.stdinfd)
	if err != nil {
		return "", xerrors.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(t.out) // новая строка после ввода
	return string(bytePwd), nil
}

// Code запрашивает код подтверждения, отправленный в Telegram.
func (t *Terminal) Code(phone string) (string, error) {
	fmt.Fprintf(t.out, "Enter the code sent to %s: ", phone)
	code, err := t.readLine()
	if err != nil {
		return "", xerrors.Errorf("failed to read code: %w", err)
	}
	if code == "" {
		return "", xerrors.New("verification code is empty")
	}
	return code, nil
}

// Confirm задает вопрос да/нет. По умолчанию - нет.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	answer, err := t.readLine()
	if err != nil {
		return false, xerrors.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
