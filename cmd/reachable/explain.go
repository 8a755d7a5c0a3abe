package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/pkg/analyzer/reachability"
	"github.com/panbanda/reachable/pkg/ast"
)

func explainCmd() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Show why a node is reachable",
		ArgsUsage: "<document>",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "node",
				Usage: "Node id to explain",
			},
			&cli.BoolFlag{
				Name:  "cycles",
				Usage: "List groups of reachable nodes that reach each other",
			},
		},
		Action: runExplainCmd,
	}
}

type explainOutput struct {
	Explanation *reachability.Explanation `json:"explanation,omitempty" toon:"explanation,omitempty"`
	Cycles      [][]reachability.Entry    `json:"cycles,omitempty" toon:"cycles,omitempty"`
}

func runExplainCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("explain takes exactly one document")
	}
	doc := c.Args().First()
	if !c.IsSet("node") && !c.Bool("cycles") {
		return fmt.Errorf("pass --node, --cycles, or both")
	}

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	a := reachability.New(analyzerOptions(cfg, logger, 0)...)
	defer a.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	trace, err := a.Trace(ctx, doc)
	if err != nil {
		return err
	}

	var out explainOutput
	if c.IsSet("node") {
		id := ast.NodeID(c.Uint("node"))
		if _, ok := trace.Unit.Map.Find(id); !ok && id != ast.CrateNodeID {
			return fmt.Errorf("node %d does not exist in %s", id, doc)
		}
		out.Explanation = trace.Explain(id)
	}
	if c.Bool("cycles") {
		out.Cycles = trace.Cycles()
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(explainReport(&out))
}

func label(e reachability.Entry) string {
	return fmt.Sprintf("%s %s (#%d)", e.Kind, e.Name, e.ID)
}

func explainReport(out *explainOutput) *output.Report {
	report := &output.Report{Title: "Reachability explanation", Data: out}

	if ex := out.Explanation; ex != nil {
		title := label(ex.Node)
		switch {
		case !ex.Reachable:
			report.Sections = append(report.Sections, &output.Section{
				Title:   title,
				Content: "not reachable from the crate root",
			})
		case len(ex.Chain) == 0:
			report.Sections = append(report.Sections, &output.Section{
				Title:   title,
				Content: "reachable (no recorded edge)",
			})
		default:
			rows := make([][]string, len(ex.Chain))
			for i, link := range ex.Chain {
				rows[i] = []string{strconv.Itoa(i + 1), label(link.From), link.Reason, label(link.To), link.To.Location}
			}
			report.Sections = append(report.Sections,
				output.NewTable(title, []string{"Step", "From", "Reason", "To", "Location"}, rows, nil, ex))
		}
	}

	if out.Cycles != nil || out.Explanation == nil {
		var lines []string
		for _, group := range out.Cycles {
			names := make([]string, len(group))
			for i, e := range group {
				names[i] = label(e)
			}
			lines = append(lines, strings.Join(names, " <-> "))
		}
		content := strings.Join(lines, "\n")
		if content == "" {
			content = "no cycles"
		}
		report.Sections = append(report.Sections, &output.Section{Title: "Cycles", Content: content})
	}
	return report
}
