package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/types"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd lists the history the daemon currently holds, pinned entries
// first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List clipboard history",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := request(ipc.CmdGetHistory, nil)
		if err != nil {
			return err
		}
		entries, err := decodeEntries(resp.Data)
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}
		return printEntries(entries)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search clipboard history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := request(ipc.CmdSearchHistory, map[string]interface{}{"query": args[0]})
		if err != nil {
			return err
		}
		entries, err := decodeEntries(resp.Data)
		if err != nil {
			return err
		}
		return printEntries(entries)
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste <id>",
	Short: "Paste a history entry into the previously focused window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		resp, err := request(ipc.CmdPasteItem, map[string]interface{}{"id": id})
		if err != nil {
			return err
		}
		if result, ok := resp.Data.(map[string]interface{}); ok {
			if injected, _ := result["injected"].(bool); !injected {
				fmt.Println("Could not inject the paste keystroke; content is on the clipboard, paste manually")
				return nil
			}
		}
		fmt.Println("Pasted")
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <text>",
	Short: "Put text on the clipboard and into the history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := request(ipc.CmdCopyText, map[string]interface{}{
			"text": strings.Join(args, " "),
		})
		return err
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Toggle the pinned flag on a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		_, err = request(ipc.CmdTogglePin, map[string]interface{}{"id": id})
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		_, err = request(ipc.CmdDeleteItem, map[string]interface{}{"id": id})
		return err
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the entire history, pinned entries included",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := request(ipc.CmdClearHistory, nil)
		return err
	},
}

func printEntries(entries []types.ClipboardEntry) error {
	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("History is empty")
		return nil
	}
	for _, entry := range entries {
		marker := " "
		if entry.Pinned {
			marker = "*"
		}
		fmt.Printf("%s %d  %-5s  %-8s  %s\n",
			marker, entry.ID, entry.Type, age(entry.Created), preview(entry))
	}
	return nil
}

func preview(entry types.ClipboardEntry) string {
	if entry.Type == types.TypeImage {
		return fmt.Sprintf("<image, %d bytes encoded>", len(entry.Content))
	}
	text := strings.Join(strings.Fields(entry.Content), " ")
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return text
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most this many entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	searchCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
}
