package view

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turingviz/pkg/diagram"
)

const svgStyle = `.node-circle{fill:#fff;stroke:#333;stroke-width:2}
.node-circle.current{fill:#ffe08a}
.accept-circle{fill:none;stroke:#333;stroke-width:1.5}
.link{fill:none;stroke:#666;stroke-width:1.5}
.link.active-link{stroke:#d9480f;stroke-width:3}
.link-label{font:12px monospace;text-anchor:middle}
.node text{font:14px sans-serif}`

// WriteSVG writes d as a self-contained SVG document.
func WriteSVG(w io.Writer, d Diagram) error {
	bw := bufio.NewWriter(w)
	n := diagram.FormatNumber

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		n(d.Width), n(d.Height), n(d.Width), n(d.Height))
	bw.WriteString(`<defs><marker id="arrowhead" viewBox="0 -5 10 10" refX="10" refY="0" orient="auto" markerWidth="6" markerHeight="6"><path d="M 0,-5 L 10,0 L 0,5"/></marker></defs>` + "\n")
	fmt.Fprintf(bw, "<style>%s</style>\n", svgStyle)

	// 1. Edges
	bw.WriteString(`<g class="links">` + "\n")
	for _, e := range d.Edges {
		if e.Path == "" {
			continue
		}
		classes := []string{"link", string(e.Shape)}
		if e.Active {
			classes = append(classes, "active-link")
		}
		fmt.Fprintf(bw, `<path class="%s" d="%s" marker-end="url(#arrowhead)"/>`+"\n", strings.Join(classes, " "), e.Path)
		if e.LabelTransform != "" {
			fmt.Fprintf(bw, `<text class="link-label" dy="-5" transform="%s">%s</text>`+"\n", e.LabelTransform, escape(e.Label))
		}
	}
	bw.WriteString("</g>\n")

	// 2. Nodes
	bw.WriteString(`<g class="nodes">` + "\n")
	for _, node := range d.Nodes {
		if !node.Placed {
			continue
		}
		classes := []string{"node-circle"}
		if node.Current {
			classes = append(classes, "current")
		}
		if node.Accept {
			classes = append(classes, "accept")
		}
		fmt.Fprintf(bw, `<g class="node" id="state-%s" transform="translate(%s,%s)">`, escape(node.ID), n(node.X), n(node.Y))
		fmt.Fprintf(bw, `<circle r="%s" class="%s"/>`, n(d.Radius), strings.Join(classes, " "))
		if node.Accept {
			fmt.Fprintf(bw, `<circle r="%s" class="accept-circle"/>`, n(d.Radius-5))
		}
		fmt.Fprintf(bw, `<text dy="4" text-anchor="middle">%s</text></g>`+"\n", escape(node.Label))
	}
	bw.WriteString("</g>\n</svg>\n")

	return bw.Flush()
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
