package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Action — действие, выбранное в интерактивном меню.
type Action string

const (
	ActionRefresh Action = "refresh"
	ActionClaim   Action = "claim"
	ActionCancel  Action = "cancel"
	ActionTx      Action = "tx"
	ActionQuit    Action = "quit"
)

// AskAction — опрос пользователя в терминале.
func AskAction(reader *bufio.Reader) Action {
	for {
		fmt.Print("\nДействие (1 — обновить, 2 — клейм, 3 — отменить тикет, 4 — история, 0 — выход): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return ActionQuit
		}
		switch strings.TrimSpace(line) {
		case "1":
			return ActionRefresh
		case "2":
			return ActionClaim
		case "3":
			return ActionCancel
		case "4":
			return ActionTx
		case "0", "q":
			return ActionQuit
		}
		fmt.Println("Не понял, попробуйте ещё раз.")
	}
}

// AskTicketID — id тикета для отмены.
func AskTicketID(reader *bufio.Reader) string {
	fmt.Print("ID тикета: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func NewReader() *bufio.Reader { return bufio.NewReader(os.Stdin) }
