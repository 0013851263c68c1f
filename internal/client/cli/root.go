package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.subject != "" {
		s = a.subject
		if a.isUnlocked() {
			s += " unlocked"
		} else {
			s += " locked"
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the interactive command loop. It reads a line, parses the first
// token as the command and dispatches to methods on the App. The loop exits
// on EOF or when the user types "exit" or "quit".
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to SealVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.Login(ctx)

	for {
		fmt.Printf("sv %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				fmt.Println("Available commands: add, (l)ist, show, delete, changepin, status, lock, exit")
			} else {
				fmt.Println("Available commands: login, setup, status, exit")
			}

		case "login":
			a.Login(ctx)
		case "setup":
			a.Setup(ctx)
		case "changepin":
			a.requireUnlocked(func() { a.ChangePin(ctx) })
		case "add":
			a.requireUnlocked(func() { a.Add(ctx) })
		case "l", "list":
			a.requireUnlocked(func() { a.List(ctx) })
		case "show":
			a.requireUnlocked(func() { a.Show(ctx) })
		case "delete":
			a.requireUnlocked(func() { a.Delete(ctx) })
		case "status":
			a.Status(ctx)
		case "lock":
			a.Lock(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) requireUnlocked(fn func()) {
	if !a.isUnlocked() {
		fmt.Println("Vault is locked. Use 'login' first.")
		return
	}
	fn()
}
