// Package report renders command results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/ui/output"
	"go.trai.ch/mpkg/internal/ui/style"
)

// Graph writes a resolved graph as one block per package followed by a summary.
func Graph(w io.Writer, g *domain.ResolvedGraph) error {
	r := output.NewRenderer(w)
	heading := style.Heading(r)
	muted := style.Muted(r)
	resolved := style.Resolved(r)
	unresolved := style.Unresolved(r)

	var b strings.Builder
	for i, p := range g.Packages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s  %s\n", heading.Render(p.Name.String()), p.Version, muted.Render(p.Source))
		fmt.Fprintf(&b, "  digest  %s\n", muted.Render(p.Digest.String()))
		if len(p.Dependencies) > 0 {
			deps := make([]string, 0, len(p.Dependencies))
			for _, d := range p.Dependencies {
				deps = append(deps, d.String())
			}
			fmt.Fprintf(&b, "  deps    %s\n", strings.Join(deps, ", "))
		}

		names := p.Addresses.Names()
		if len(names) == 0 {
			continue
		}
		width := 0
		for _, n := range names {
			width = max(width, len(n.String()))
		}
		b.WriteString("  addresses\n")
		for _, n := range names {
			value := unresolved.Render(domain.UnresolvedAddress)
			if v := p.Addresses[n]; v != nil {
				value = resolved.Render(v.String())
			}
			fmt.Fprintf(&b, "    %-*s = %s\n", width, n.String(), value)
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n",
		resolved.Render(style.Check),
		fmt.Sprintf("Resolved %s (%s mode)", plural(len(g.Packages), "package"), g.Mode))
	for _, class := range g.Unresolved {
		members := make([]string, 0, len(class.Members))
		for _, m := range class.Members {
			members = append(members, m.String())
		}
		fmt.Fprintf(&b, "%s unresolved address %s\n", unresolved.Render(style.Warning), strings.Join(members, " = "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonGraph struct {
	Root       string        `json:"root"`
	Mode       string        `json:"mode"`
	Packages   []jsonPackage `json:"packages"`
	Unresolved [][]string    `json:"unresolved,omitempty"`
}

type jsonPackage struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Root         string            `json:"root"`
	Source       string            `json:"source"`
	Digest       string            `json:"digest"`
	Addresses    map[string]string `json:"addresses"`
	Dependencies []string          `json:"dependencies"`
}

// GraphJSON writes a resolved graph as an indented JSON document.
// Unresolved addresses are written as "_".
func GraphJSON(w io.Writer, g *domain.ResolvedGraph) error {
	doc := jsonGraph{
		Root:     g.Root.String(),
		Mode:     g.Mode.String(),
		Packages: make([]jsonPackage, 0, len(g.Packages)),
	}
	for _, p := range g.Packages {
		jp := jsonPackage{
			Name:         p.Name.String(),
			Version:      p.Version.String(),
			Root:         p.Root,
			Source:       p.Source,
			Digest:       p.Digest.String(),
			Addresses:    make(map[string]string, len(p.Addresses)),
			Dependencies: make([]string, 0, len(p.Dependencies)),
		}
		for name, v := range p.Addresses {
			jp.Addresses[name.String()] = domain.UnresolvedAddress
			if v != nil {
				jp.Addresses[name.String()] = v.String()
			}
		}
		for _, d := range p.Dependencies {
			jp.Dependencies = append(jp.Dependencies, d.String())
		}
		doc.Packages = append(doc.Packages, jp)
	}
	for _, class := range g.Unresolved {
		members := make([]string, 0, len(class.Members))
		for _, m := range class.Members {
			members = append(members, m.String())
		}
		doc.Unresolved = append(doc.Unresolved, members)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Check writes the outcome of a manifest check.
func Check(w io.Writer, m *domain.SourceManifest, mode domain.BuildMode, deps []domain.LocateRequest) error {
	r := output.NewRenderer(w)
	muted := style.Muted(r)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s is valid (%s mode, %s)\n",
		style.Resolved(r).Render(style.Check),
		style.Heading(r).Render(m.Package.Name.String()),
		m.Package.Version,
		mode,
		plural(len(deps), "dependency"))

	width := 0
	for _, d := range deps {
		width = max(width, len(d.Name.String()))
	}
	for _, d := range deps {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, d.Name.String(), muted.Render(d.Source()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Lock writes the outcome of a lock command.
func Lock(w io.Writer, lock *domain.Lockfile, changed bool) error {
	r := output.NewRenderer(w)

	msg := fmt.Sprintf("Wrote %s (%s)", domain.LockFileName, plural(len(lock.Packages), "package"))
	if !changed {
		msg = fmt.Sprintf("%s is up to date (%s)", domain.LockFileName, plural(len(lock.Packages), "package"))
	}

	_, err := fmt.Fprintf(w, "%s %s\n", style.Resolved(r).Render(style.Check), msg)
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
