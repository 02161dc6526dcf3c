package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berrythewa/clipdeck/internal/ipc"
)

var emojiCmd = &cobra.Command{
	Use:   "emoji",
	Short: "Show the recent-emoji list",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := request(ipc.CmdGetRecentEmojis, nil)
		if err != nil {
			return err
		}
		glyphs, err := decodeStrings(resp.Data)
		if err != nil {
			return err
		}
		if len(glyphs) == 0 {
			fmt.Println("No recent emojis")
			return nil
		}
		for _, g := range glyphs {
			fmt.Println(g)
		}
		return nil
	},
}

var emojiAddCmd = &cobra.Command{
	Use:   "add <glyph>",
	Short: "Record an emoji use and copy it to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := request(ipc.CmdAddRecentEmoji, map[string]interface{}{"glyph": args[0]}); err != nil {
			return err
		}
		_, err := request(ipc.CmdCopyText, map[string]interface{}{"text": args[0]})
		return err
	},
}

var hotkeyCmd = &cobra.Command{
	Use:   "hotkey",
	Short: "Show the active global hotkey",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := request(ipc.CmdGetHotkey, nil)
		if err != nil {
			return err
		}
		binding, _ := resp.Data.(string)
		if binding == "" {
			fmt.Println("Hotkey disabled (no combination could be registered)")
			return nil
		}
		fmt.Println(binding)
		return nil
	},
}

var hotkeySetCmd = &cobra.Command{
	Use:   "set <binding>",
	Short: "Rebind the global hotkey (e.g. Super+V, Ctrl+Alt+C)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := request(ipc.CmdSetHotkey, map[string]interface{}{"binding": args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("Hotkey set to %v\n", resp.Data)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Ask the daemon to show the picker",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := request(ipc.CmdShowWindow, nil)
		return err
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Ask the daemon to hide the picker",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := request(ipc.CmdHideWindow, nil)
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := request(ipc.CmdPing, nil); err != nil {
			return err
		}
		fmt.Println("Daemon is running")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Clipdeck\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Commit:     %s\n", Commit)
	},
}

func init() {
	emojiCmd.AddCommand(emojiAddCmd)
	hotkeyCmd.AddCommand(hotkeySetCmd)

	for _, cmd := range []*cobra.Command{
		historyCmd, searchCmd, pasteCmd, copyCmd, pinCmd, deleteCmd, clearCmd,
		emojiCmd, hotkeyCmd, showCmd, hideCmd, statusCmd, versionCmd,
	} {
		AddCommand(cmd)
	}
}
