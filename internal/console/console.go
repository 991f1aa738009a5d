package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	goTeller "github.com/MrEthical07/goTeller"
)

// Bank is the part of the engine the console drives.
type Bank interface {
	CanAttempt(ctx context.Context, accountNumber string) error
	Authenticate(ctx context.Context, accountNumber, secret string) (*goTeller.AuthSession, error)
	Logout(ctx context.Context, token string) error
	RecoveryQuestions(ctx context.Context, accountNumber string) ([]string, error)
	AttemptUnlock(ctx context.Context, req goTeller.UnlockRequest) error
	Deposit(ctx context.Context, token string, amount int64) (goTeller.Account, error)
	Withdraw(ctx context.Context, token string, amount int64) (goTeller.Account, error)
	Statement(ctx context.Context, token string) (goTeller.Statement, error)
	CloseAccount(ctx context.Context, token, secret string) error
}

var questionPrompts = map[string]string{
	goTeller.QuestionFullName:  "Full name",
	goTeller.QuestionBirthDate: "Birth date (dd/mm/yyyy)",
}

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
		muted: r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Console is a line-oriented teller terminal.
type Console struct {
	bank   Bank
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
	st     styles
}

// New creates a console reading from in and writing to out. When in is a
// terminal, secrets are read without echo.
func New(bank Bank, in io.Reader, out io.Writer) *Console {
	c := &Console{
		bank: bank,
		in:   bufio.NewReader(in),
		out:  out,
		st:   newStyles(out),
	}
	c.secret = c.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		c.secret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			if err != nil {
				return "", fmt.Errorf("read secret: %w", err)
			}
			return string(b), nil
		}
	}
	return c
}

// Run shows the main menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.println(c.st.title.Render("goTeller"))
	for {
		c.println("")
		c.println("1) Log in")
		c.println("2) Unlock account")
		c.println("0) Exit")
		choice, err := c.prompt("> ")
		if err != nil {
			return ignoreEOF(err)
		}
		switch choice {
		case "1":
			err = c.login(ctx)
		case "2":
			err = c.unlock(ctx)
		case "0", "q":
			c.println(c.st.muted.Render("Bye."))
			return nil
		default:
			c.failf("Unknown option %q.", choice)
		}
		if err != nil {
			return ignoreEOF(err)
		}
	}
}

func (c *Console) login(ctx context.Context) error {
	number, err := c.prompt("Account number: ")
	if err != nil {
		return err
	}
	if err := c.bank.CanAttempt(ctx, number); err != nil {
		c.fail(err)
		return nil
	}
	secret, err := c.promptSecret("Secret: ")
	if err != nil {
		return err
	}
	sess, err := c.bank.Authenticate(ctx, number, secret)
	if err != nil {
		c.fail(err)
		return nil
	}
	c.println(c.st.ok.Render("Access granted."))
	return c.teller(ctx, sess.Token)
}

func (c *Console) teller(ctx context.Context, token string) error {
	for {
		c.println("")
		c.println("1) Statement")
		c.println("2) Deposit")
		c.println("3) Withdraw")
		c.println("4) Close account")
		c.println("0) Log out")
		choice, err := c.prompt("> ")
		if err != nil {
			_ = c.bank.Logout(ctx, token)
			return err
		}

		switch choice {
		case "1":
			err = c.statement(ctx, token)
		case "2":
			err = c.move(ctx, token, c.bank.Deposit)
		case "3":
			err = c.move(ctx, token, c.bank.Withdraw)
		case "4":
			var closed bool
			closed, err = c.closeAccount(ctx, token)
			if closed {
				return nil
			}
		case "0":
			if err := c.bank.Logout(ctx, token); err != nil && !errors.Is(err, goTeller.ErrInvalidToken) {
				c.fail(err)
			}
			c.println(c.st.muted.Render("Logged out."))
			return nil
		default:
			c.failf("Unknown option %q.", choice)
			continue
		}

		if err != nil {
			if isInputErr(err) {
				_ = c.bank.Logout(ctx, token)
				return err
			}
			c.fail(err)
			if sessionEnded(err) {
				return nil
			}
		}
	}
}

func (c *Console) closeAccount(ctx context.Context, token string) (bool, error) {
	secret, err := c.promptSecret("Confirm secret: ")
	if err != nil {
		return false, inputErr{err}
	}
	if err := c.bank.CloseAccount(ctx, token, secret); err != nil {
		return false, err
	}
	c.println(c.st.ok.Render("Account closed."))
	return true, nil
}

func (c *Console) statement(ctx context.Context, token string) error {
	st, err := c.bank.Statement(ctx, token)
	if err != nil {
		return err
	}
	c.println(c.st.title.Render("Statement " + st.AccountNumber + " (" + st.Kind.String() + ")"))
	for _, tx := range st.Transactions {
		c.println("  " + FormatAmount(tx))
	}
	c.println("Balance:   " + FormatAmount(st.Balance))
	if st.OverdraftLimit > 0 {
		c.println("Overdraft: " + FormatAmount(st.OverdraftLimit))
	}
	c.println("Available: " + FormatAmount(st.Available))
	return nil
}

func (c *Console) move(ctx context.Context, token string, op func(context.Context, string, int64) (goTeller.Account, error)) error {
	raw, err := c.prompt("Amount: ")
	if err != nil {
		return inputErr{err}
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	a, err := op(ctx, token, amount)
	if err != nil {
		return err
	}
	c.println(c.st.ok.Render("Done. Balance: " + FormatAmount(a.Balance)))
	return nil
}

func (c *Console) unlock(ctx context.Context) error {
	number, err := c.prompt("Account number: ")
	if err != nil {
		return err
	}
	questions, err := c.bank.RecoveryQuestions(ctx, number)
	if err != nil {
		c.fail(err)
		return nil
	}

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		label, ok := questionPrompts[q]
		if !ok {
			label = strings.ReplaceAll(q, "_", " ")
		}
		v, err := c.prompt(label + ": ")
		if err != nil {
			return err
		}
		answers[q] = v
	}

	newSecret, err := c.promptSecret("New secret (empty keeps the current one): ")
	if err != nil {
		return err
	}

	err = c.bank.AttemptUnlock(ctx, goTeller.UnlockRequest{
		AccountNumber: number,
		Answers:       answers,
		NewSecret:     newSecret,
	})
	if err != nil {
		c.fail(err)
		return nil
	}
	c.println(c.st.ok.Render("Account unlocked."))
	return nil
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	return c.readLine()
}

func (c *Console) promptSecret(label string) (string, error) {
	fmt.Fprint(c.out, label)
	return c.secret()
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) fail(err error) {
	c.println(c.st.fail.Render(Message(err)))
}

func (c *Console) failf(format string, args ...any) {
	c.println(c.st.fail.Render(fmt.Sprintf(format, args...)))
}

type inputErr struct{ err error }

func (e inputErr) Error() string { return e.err.Error() }
func (e inputErr) Unwrap() error { return e.err }

func isInputErr(err error) bool {
	var ie inputErr
	return errors.As(err, &ie)
}

func sessionEnded(err error) bool {
	return errors.Is(err, goTeller.ErrInvalidToken) || errors.Is(err, goTeller.ErrIntegrity)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
