// Command pbedit is an interactive terminal editor for Protocol Buffers
// binary payloads. Grounded on cmd/nnav/main.go's CLI-argument-handling
// shape and interlynk-io-sbomasm/cmd/root.go's cobra command tree;
// exact exit codes and the positional argument grammar follow
// original_source/src/main.rs's Args/main().
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/termproto/pbedit/internal/config"
	"github.com/termproto/pbedit/internal/historydb"
	"github.com/termproto/pbedit/internal/layout"
	"github.com/termproto/pbedit/internal/logging"
	"github.com/termproto/pbedit/internal/schema"
	"github.com/termproto/pbedit/internal/tui"
	"github.com/termproto/pbedit/internal/wire"
)

// Exit codes per spec.md §6.1.
const (
	exitDataFileMissing   = 101
	exitSchemaFileMissing = 102
	exitRootNotDetected   = 103
	exitRootNotFound      = 104
)

var protoPath []string

var rootCmd = &cobra.Command{
	Use:   "pbedit data_file[;proto_file[;root_message]]",
	Short: "Interactive terminal editor for Protocol Buffers binary payloads",
	Long: `pbedit opens a binary protobuf payload together with its schema and
lets you navigate, inspect, and mutate the message tree in place.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringArrayVarP(&protoPath, "proto_path", "I", nil, "schema search root (repeatable)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the usage/error; the process already
		// exited inside run for every taxonomy case spec.md §6.1 names,
		// so this is the generic path for argument-parsing failures and
		// for errors run returns (logging setup, decode, save).
		os.Exit(1)
	}
}

// payload is the parsed positional argument:
// data_file[;proto_file[;root_message]].
type payload struct {
	DataFile    string
	ProtoFile   string
	RootMessage string
}

func parsePayload(arg string) payload {
	parts := strings.SplitN(arg, ";", 3)
	p := payload{DataFile: parts[0]}
	if len(parts) > 1 {
		p.ProtoFile = parts[1]
	}
	if len(parts) > 2 {
		p.RootMessage = parts[2]
	}
	return p
}

func run(cmd *cobra.Command, args []string) error {
	p := parsePayload(args[0])
	ambient := config.Load()
	var roots []string
	for _, dir := range protoPath {
		if info, err := os.Stat(dir); !filepath.IsAbs(dir) || err != nil || !info.IsDir() {
			fmt.Fprintf(os.Stderr, "pbedit: ignoring proto_path %s: not an absolute directory\n", dir)
			continue
		}
		roots = append(roots, dir)
	}
	roots = append(roots, ambient.ProtoPath...)

	sync, err := logging.Init(ambient.LogPath, ambient.Debug)
	if err != nil {
		return err
	}
	defer sync()

	if _, err := os.Stat(p.DataFile); err != nil {
		fmt.Fprintf(os.Stderr, "pbedit: data file not found: %s\n", p.DataFile)
		os.Exit(exitDataFileMissing)
	}

	protoFile := p.ProtoFile
	if protoFile == "" {
		protoFile = deriveSchemaPath(p.DataFile)
	}
	if _, err := os.Stat(protoFile); err != nil {
		fmt.Fprintf(os.Stderr, "pbedit: schema file not found: %s\n", protoFile)
		os.Exit(exitSchemaFileMissing)
	}

	sch, err := schema.Parse(protoFile, roots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pbedit: failed to parse schema: %v\n", err)
		os.Exit(exitSchemaFileMissing)
	}

	root, err := resolveRoot(sch, p.RootMessage)
	if err != nil {
		if p.RootMessage == "" {
			fmt.Fprintln(os.Stderr, "pbedit: could not auto-detect a root message; pass one explicitly")
			os.Exit(exitRootNotDetected)
		}
		fmt.Fprintf(os.Stderr, "pbedit: root message %q not found\n", p.RootMessage)
		os.Exit(exitRootNotFound)
	}

	f, err := os.Open(p.DataFile)
	if err != nil {
		return err
	}
	defer f.Close()
	limit := int64(1 << 30)
	msg, err := wire.Decode(f, sch, root, &limit)
	if err != nil {
		return fmt.Errorf("decode %s: %w", p.DataFile, err)
	}

	doc := &layout.Document{Schema: sch, RootDesc: root, Root: msg}
	cfg := layout.DefaultConfig()
	cfg.ShowComments = boolToVisibility(ambient.ShowComments)
	cfg.ShowBinary = ambient.ShowBinary
	cfg.ShowDataTypes = ambient.ShowDataTypes

	if err := recordHistory(p); err != nil {
		logging.L().Warnf("could not record history: %v", err)
	}

	model := tui.New(doc, cfg, filepath.Base(p.DataFile), 80, 24)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	final, ok := finalModel.(tui.Model)
	if ok && final.Dirty() {
		if err := saveDocument(p.DataFile, sch, root, final.Document()); err != nil {
			return fmt.Errorf("save %s: %w", p.DataFile, err)
		}
	}
	return nil
}

func boolToVisibility(v bool) layout.CommentVisibility {
	if v {
		return layout.CommentsInline
	}
	return layout.CommentsHidden
}

// deriveSchemaPath guesses a .proto file alongside an omitted schema
// argument: same base name, .proto extension, per spec.md's allowance
// that the schema file is optional in the CLI grammar.
func deriveSchemaPath(dataFile string) string {
	ext := filepath.Ext(dataFile)
	return strings.TrimSuffix(dataFile, ext) + ".proto"
}

func resolveRoot(sch *schema.Schema, name string) (*schema.MessageDescriptor, error) {
	if name == "" {
		m, ok := sch.AutoDetectRootMessage()
		if !ok {
			return nil, fmt.Errorf("no unique root message")
		}
		return m, nil
	}
	m, ok := sch.Message(name)
	if !ok {
		return nil, fmt.Errorf("message %q not declared", name)
	}
	return m, nil
}

func recordHistory(p payload) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	db, err := historydb.Open(filepath.Join(home, ".pbedit", "history.db"))
	if err != nil {
		return err
	}
	defer db.Close()
	return historydb.Record(db, historydb.Entry{
		DataFile:    p.DataFile,
		ProtoFile:   p.ProtoFile,
		RootMessage: p.RootMessage,
	})
}

func saveDocument(path string, sch *schema.Schema, root *schema.MessageDescriptor, msg *wire.MessageValue) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := wire.Encode(f, sch, root, msg); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
