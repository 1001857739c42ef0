package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/pipesgo/internal/pipe"
)

// List writes every registered pipe with its parameters and help.
func (a *App) List(w io.Writer) error {
	for _, p := range a.registry.Pipes() {
		if _, err := fmt.Fprintf(w, "%s\n", p.QualifiedName()); err != nil {
			return err
		}
		if p.Help() != "" {
			fmt.Fprintf(w, "    %s\n", p.Help())
		}
		if !p.AcceptsDryRun() {
			fmt.Fprintf(w, "    (skipped on dry runs)\n")
		}
		writeParams(w, p.Params(), 1)
	}
	return nil
}

func writeParams(w io.Writer, params []pipe.ParamInfo, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, info := range params {
		var attrs []string
		switch info.Kind {
		case "built-in":
			attrs = append(attrs, "built-in")
		case "context":
			attrs = append(attrs, "context "+info.Key)
		default:
			attrs = append(attrs, fmt.Sprintf("%s %q", info.Kind, info.Key), info.Type)
			if info.HasDefault {
				attrs = append(attrs, "default "+info.Default)
			}
			if info.Mutable {
				attrs = append(attrs, "mutable")
			}
			if info.Override != "" {
				attrs = append(attrs, "override "+info.Override)
			}
		}

		line := fmt.Sprintf("%s- %s (%s)", indent, info.Name, strings.Join(attrs, ", "))
		if info.Help != "" {
			line += ": " + info.Help
		}
		fmt.Fprintln(w, line)
		if info.Notes != "" {
			fmt.Fprintf(w, "%s    %s\n", indent, info.Notes)
		}
		writeParams(w, info.Fields, depth+1)
	}
}
