package schema

import (
	"testing"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/spf13/cobra"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "evm-agent"}
	child := &cobra.Command{Use: "actions", Short: "action cmds"}
	leaf := &cobra.Command{Use: "run <name>", Short: "run an action"}
	leaf.Flags().String("params", "", "JSON object of parameters")
	child.AddCommand(leaf)
	root.AddCommand(child)
	return root
}

func TestBuildSchema(t *testing.T) {
	s, err := Build(testRoot(), "actions run")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Path != "evm-agent actions run" {
		t.Fatalf("unexpected path: %s", s.Path)
	}
	if len(s.Flags) != 1 || s.Flags[0].Name != "params" {
		t.Fatalf("unexpected flags: %+v", s.Flags)
	}
	if _, err := Build(testRoot(), "actions nope"); !clierr.Is(err, clierr.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestBuildDocumentCarriesActions(t *testing.T) {
	actions := []model.ActionInfo{{Name: "get-address", Description: "Get your EVM wallet address", Parameters: []model.ParamInfo{}}}
	doc, err := BuildDocument(testRoot(), "", actions)
	if err != nil {
		t.Fatalf("BuildDocument failed: %v", err)
	}
	if doc.Command.Path != "evm-agent" || len(doc.Command.Subcommands) != 1 {
		t.Fatalf("unexpected command tree: %+v", doc.Command)
	}
	if len(doc.Actions) != 1 || doc.Actions[0].Name != "get-address" {
		t.Fatalf("unexpected actions: %+v", doc.Actions)
	}
}
