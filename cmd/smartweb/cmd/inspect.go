package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/msto63/smartweb/internal/smartscript/ast"
	"github.com/msto63/smartweb/internal/smartscript/parser"
)

var inspectCanonical bool

var (
	colorTag     = lipgloss.Color("#8B5CF6") // Violet
	colorElement = lipgloss.Color("#06B6D4") // Cyan
	colorText    = lipgloss.Color("#94A3B8") // Slate 400
	colorTitle   = lipgloss.Color("#F8FAFC") // Slate 50

	titleStyle   = lipgloss.NewStyle().Foreground(colorTitle).Bold(true).MarginBottom(1)
	tagStyle     = lipgloss.NewStyle().Foreground(colorTag).Bold(true)
	elementStyle = lipgloss.NewStyle().Foreground(colorElement)
	textStyle    = lipgloss.NewStyle().Foreground(colorText).Italic(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorTag).Padding(0, 1)
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <datei>",
	Short: "Zeigt die Struktur einer SmartScript-Datei",
	Long: `Parst eine SmartScript-Datei und zeigt den Dokumentbaum an.

Mit --canonical wird stattdessen der kanonische Quelltext ausgegeben,
der beim erneuten Parsen denselben Baum ergibt.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectCanonical, "canonical", false, "Kanonischen Quelltext ausgeben")
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		printError("Datei nicht gelesen", err)
		return err
	}
	doc, err := parser.Parse(string(data))
	if err != nil {
		printError("Parsen fehlgeschlagen", err)
		return err
	}

	if inspectCanonical {
		fmt.Print(doc.String())
		return nil
	}

	var b strings.Builder
	renderTree(&b, doc, "")
	fmt.Println(titleStyle.Render(args[0]))
	fmt.Println(boxStyle.Render(strings.TrimRight(b.String(), "\n")))
	return nil
}

func renderTree(b *strings.Builder, n ast.Node, indent string) {
	switch node := n.(type) {
	case *ast.DocumentNode:
		b.WriteString(tagStyle.Render("DOCUMENT") + "\n")
		renderChildren(b, node.Children(), indent)
	case *ast.TextNode:
		b.WriteString(indent + textStyle.Render(strconv.Quote(node.Text)) + "\n")
	case *ast.ForLoopNode:
		parts := []string{node.Variable.AsText(), node.Start.AsText(), node.End.AsText()}
		if node.Step != nil {
			parts = append(parts, node.Step.AsText())
		}
		b.WriteString(indent + tagStyle.Render("FOR") + " " + elementStyle.Render(strings.Join(parts, " ")) + "\n")
		renderChildren(b, node.Children(), indent)
	case *ast.EchoNode:
		elems := make([]string, 0, len(node.Elements()))
		for _, e := range node.Elements() {
			elems = append(elems, e.AsText())
		}
		b.WriteString(indent + tagStyle.Render("=") + " " + elementStyle.Render(strings.Join(elems, " ")) + "\n")
	}
}

func renderChildren(b *strings.Builder, children []ast.Node, indent string) {
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		var sub strings.Builder
		renderTree(&sub, child, indent+next)
		b.WriteString(indent + branch + strings.TrimPrefix(sub.String(), indent+next))
	}
}
